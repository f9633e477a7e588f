package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const welcomeSubject = "Welcome to HealthCover"

var welcomeTmpl = template.Must(template.New("welcome").Parse(
	`<p>Hi {{.Username}},</p>` +
		`<p>Your HealthCover account is ready. You can now sign in with {{.Email}}.</p>`))

// Welcome renders the post-registration email. Fields are HTML-escaped.
func Welcome(username, address string) (subject, body string, err error) {
	var buf bytes.Buffer
	data := struct{ Username, Email string }{username, address}
	if err := welcomeTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render welcome email: %w", err)
	}
	return welcomeSubject, buf.String(), nil
}
