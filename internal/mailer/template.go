package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

const activationSubject = "Activate your account - Tesoro"

var activationTemplate = template.Must(template.New("activation").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Account activation</title>
</head>
<body style="margin:0; padding:24px; background-color:#f2f4f8; font-family:Arial, Helvetica, sans-serif; color:#333;">
  <h1 style="color:#45ab48;">Tesoro</h1>
  <p>Hi <strong>{{.Username}}</strong>,</p>
  <p>Thanks for signing up. Confirm your email address to start using your account:</p>
  <p><a href="{{.Link}}" style="background-color:#45ab48; color:#fff; padding:12px 32px; border-radius:8px; text-decoration:none;">Activate my account</a></p>
  <p>The link expires in {{.ValidFor}}. If you did not create an account you can ignore this email.</p>
</body>
</html>
`))

type activationView struct {
	Username string
	Link     string
	ValidFor string
}

// renderActivation returns the HTML body of the activation email.
func renderActivation(username, link, validFor string) (string, error) {
	var buf bytes.Buffer
	if err := activationTemplate.Execute(&buf, activationView{Username: username, Link: link, ValidFor: validFor}); err != nil {
		return "", fmt.Errorf("render activation email: %w", err)
	}
	return buf.String(), nil
}
