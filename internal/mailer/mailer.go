// Package mailer sends the email-verification message for new signups.
//
// The message carries one magic link: {baseURL}/verify-email?linkId={token},
// where the token is produced by internal/linktoken. The mailer neither
// mints nor inspects tokens — it just embeds whatever string it is given.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"
)

// Config holds SMTP connection settings. Host/Port point at any
// STARTTLS-capable relay (Gmail app passwords work for small deployments).
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string // e.g. `"The PingMe App" <noreply@pingme.app>`
	BaseURL  string // public origin used to build the verification link
}

// SMTP sends verification emails over a plain-auth SMTP relay.
type SMTP struct {
	cfg  Config
	tmpl *template.Template
}

// New parses the embedded email template once and returns a ready sender.
func New(cfg Config) (*SMTP, error) {
	tmpl, err := template.New("verify").Parse(verifyEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("mailer: parsing template: %w", err)
	}
	return &SMTP{cfg: cfg, tmpl: tmpl}, nil
}

// VerificationLink builds the full magic-link URL for a token.
func (m *SMTP) VerificationLink(linkID string) string {
	return m.cfg.BaseURL + "/verify-email?linkId=" + url.QueryEscape(linkID)
}

// SendVerification emails the signup-verification message to one recipient.
func (m *SMTP) SendVerification(to, fullName, linkID string) error {
	body, err := m.render(fullName, m.VerificationLink(linkID))
	if err != nil {
		return err
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: Verify your email address\r\n")
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=\"UTF-8\"\r\n")
	fmt.Fprintf(&msg, "\r\n%s", body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.Username, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("mailer: sending to %s: %w", to, err)
	}
	return nil
}

// render fills the HTML template. html/template escapes Name and Link, so a
// user-controlled display name cannot inject markup into the email.
func (m *SMTP) render(fullName, link string) (string, error) {
	var buf bytes.Buffer
	err := m.tmpl.Execute(&buf, struct {
		Name string
		Link string
	}{Name: fullName, Link: link})
	if err != nil {
		return "", fmt.Errorf("mailer: rendering template: %w", err)
	}
	return buf.String(), nil
}

const verifyEmailTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Email Verification</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f4f7fc; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden;">
    <div style="background-color: #3498db; padding: 20px; text-align: center; color: #ffffff;">
      <h1 style="margin: 0;">Welcome to PingMe</h1>
    </div>
    <div style="padding: 30px;">
      <p>Hi {{.Name}},</p>
      <p>Thanks for signing up! Please confirm your email address by clicking the button below.</p>
      <p style="text-align: center; margin: 30px 0;">
        <a href="{{.Link}}"
           style="background-color: #3498db; color: #ffffff; padding: 12px 24px; border-radius: 4px; text-decoration: none;">
          Verify my email
        </a>
      </p>
      <p>If the button doesn't work, copy this link into your browser:</p>
      <p><a href="{{.Link}}">{{.Link}}</a></p>
      <p>If you didn't create a PingMe account, you can safely ignore this email.</p>
    </div>
  </div>
</body>
</html>`
