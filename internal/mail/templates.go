package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var resetPasswordHTML = template.Must(template.New("reset").Parse(`<h1>Forget Password</h1>
<h2>Your Reset Code is: {{.Code}}</h2>
<h3>Use this code to reset your password</h3>
<p>Code will expire in {{.Minutes}} minutes</p>
`))

// PasswordResetMessage builds the email carrying a one-time reset code
func PasswordResetMessage(to, code string, ttl time.Duration) (Message, error) {
	var html bytes.Buffer
	err := resetPasswordHTML.Execute(&html, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(ttl.Minutes())})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render reset email: %w", err)
	}

	return Message{
		To:      []string{to},
		Subject: "Forget Password",
		Text:    "Your Reset Code is: " + code,
		HTML:    html.String(),
	}, nil
}
