package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status classifies the outcome of a request
type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
	StatusError   Status = "error"
)

// MessageType tags a single user-facing message
type MessageType string

const (
	TypeSuccess MessageType = "success"
	TypeError   MessageType = "error"
	TypeInfo    MessageType = "info"
)

type Message struct {
	Message string      `json:"message"`
	Type    MessageType `json:"type"`
}

type Pagination struct {
	Pages  int   `json:"pages"`
	Page   int   `json:"page"`
	Length int   `json:"length"`
	Limit  int   `json:"limit"`
	Total  int64 `json:"total"`
}

// Envelope is the body of every JSON response the API writes
type Envelope struct {
	Name       string         `json:"name"`
	StatusCode int            `json:"statusCode"`
	Status     Status         `json:"status"`
	Messages   []Message      `json:"messages"`
	Data       any            `json:"data"`
	Pagination *Pagination    `json:"pagination,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func SuccessMessage(msg string) Message { return Message{Message: msg, Type: TypeSuccess} }
func ErrorMessage(msg string) Message   { return Message{Message: msg, Type: TypeError} }
func InfoMessage(msg string) Message    { return Message{Message: msg, Type: TypeInfo} }

// Success writes a success envelope
func Success(c *gin.Context, code int, data any, messages ...Message) {
	c.JSON(code, newEnvelope(code, StatusSuccess, data, messages))
}

// Paginated writes a success envelope with a pagination block
func Paginated(c *gin.Context, data any, p Pagination, messages ...Message) {
	env := newEnvelope(http.StatusOK, StatusSuccess, data, messages)
	env.Pagination = &p
	c.JSON(http.StatusOK, env)
}

// Error aborts the request with an error envelope. err, when set, is exposed
// as metadata.error unless gin runs in release mode.
func Error(c *gin.Context, code int, err error, messages ...Message) {
	env := newEnvelope(code, statusFor(code), nil, messages)
	if err != nil && exposeDetails() {
		env.Metadata = map[string]any{"error": err.Error()}
	}
	c.AbortWithStatusJSON(code, env)
}

// Internal aborts with a 500 envelope
func Internal(c *gin.Context, err error) {
	messages := []Message{ErrorMessage("Something went wrong")}
	if err != nil && exposeDetails() {
		messages = append(messages, ErrorMessage(err.Error()))
	}
	Error(c, http.StatusInternalServerError, err, messages...)
}

func newEnvelope(code int, status Status, data any, messages []Message) Envelope {
	if messages == nil {
		messages = []Message{}
	}
	return Envelope{
		Name:       http.StatusText(code),
		StatusCode: code,
		Status:     status,
		Messages:   messages,
		Data:       data,
	}
}

// statusFor: auth and throttling failures are the client's "fail", the rest "error"
func statusFor(code int) Status {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return StatusFail
	default:
		return StatusError
	}
}

func exposeDetails() bool {
	return gin.Mode() != gin.ReleaseMode
}
