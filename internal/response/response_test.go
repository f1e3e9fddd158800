package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, http.StatusCreated, gin.H{"id": 1}, SuccessMessage("Book Created Successfully"))

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decode(t, w)
	assert.Equal(t, "Created", env.Name)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, []Message{{Message: "Book Created Successfully", Type: TypeSuccess}}, env.Messages)
	assert.Nil(t, env.Pagination)
	assert.Nil(t, env.Metadata)
}

func TestSuccess_EmptyMessagesIsArray(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, http.StatusOK, nil)

	assert.Contains(t, w.Body.String(), `"messages":[]`)
}

func TestPaginated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Paginated(c, []int{1, 2}, Pagination{Pages: 3, Page: 2, Length: 2, Limit: 10, Total: 22})

	env := decode(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, Pagination{Pages: 3, Page: 2, Length: 2, Limit: 10, Total: 22}, *env.Pagination)
}

func TestError_StatusClassification(t *testing.T) {
	tests := []struct {
		code   int
		status Status
	}{
		{http.StatusBadRequest, StatusError},
		{http.StatusNotFound, StatusError},
		{http.StatusUnauthorized, StatusFail},
		{http.StatusRequestTimeout, StatusFail},
		{http.StatusInternalServerError, StatusError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Error(c, tt.code, nil, ErrorMessage("boom"))

			assert.Equal(t, tt.code, w.Code)
			assert.True(t, c.IsAborted())
			env := decode(t, w)
			assert.Equal(t, tt.status, env.Status)
			assert.Nil(t, env.Data)
		})
	}
}

func TestError_MetadataDependsOnMode(t *testing.T) {
	cause := errors.New("pq: connection refused")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, http.StatusBadRequest, cause, ErrorMessage("bad"))
	assert.Equal(t, "pq: connection refused", decode(t, w).Metadata["error"])

	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Error(c, http.StatusBadRequest, cause, ErrorMessage("bad"))
	assert.Nil(t, decode(t, w).Metadata)
}

func TestInternal(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Internal(c, errors.New("disk full"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.Equal(t, "Internal Server Error", env.Name)
	require.Len(t, env.Messages, 2)
	assert.Equal(t, "Something went wrong", env.Messages[0].Message)
	assert.Equal(t, "disk full", env.Messages[1].Message)
}
