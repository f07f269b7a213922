// Package mailer sends transactional email over SMTP.
package mailer

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer wraps a gomail SMTP dialer.  Configuration comes from the
// SMTP_* environment variables; the frontend base URL is injected so
// verification links point at the right deployment.
type Mailer struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

// New builds a Mailer from SMTP_HOST, SMTP_PORT, SMTP_USERNAME,
// SMTP_PASSWORD and SMTP_FROM.  Missing host or from yields an error
// so the caller can decide whether mail is mandatory in its
// environment.
func New(frontendURL string) (*Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	from := os.Getenv("SMTP_FROM")
	if host == "" || from == "" {
		return nil, fmt.Errorf("mailer: SMTP_HOST and SMTP_FROM are required")
	}
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	d := gomail.NewDialer(host, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	return &Mailer{dialer: d, from: from, frontendURL: frontendURL}, nil
}

// SendVerificationEmail delivers the single-use verification link for
// a freshly registered account.
func (m *Mailer) SendVerificationEmail(email, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Email Verification")
	msg.SetBody("text/html", fmt.Sprintf(`<p>Click <a href="%s">here</a> to verify your email.</p>`, link))

	return m.dialer.DialAndSend(msg)
}
