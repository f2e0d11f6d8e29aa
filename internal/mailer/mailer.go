// Package mailer delivers verification codes out of band over SMTP.
package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends a one-time verification code to an address.
type Mailer interface {
	SendVerificationCode(to, code string) error
}

// SMTP is a Mailer backed by an SMTP server.
type SMTP struct {
	host   string
	port   int
	user   string
	pass   string
	sender string
}

// NewSMTP builds an SMTP mailer.
func NewSMTP(host string, port int, user, pass, sender string) *SMTP {
	return &SMTP{host: host, port: port, user: user, pass: pass, sender: sender}
}

// SendVerificationCode mails the code. The code must never be logged or
// returned through the API; this is its only way out of the process.
func (m *SMTP) SendVerificationCode(to, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your KonMari verification code")
	msg.SetBody("text/plain", fmt.Sprintf("Your verification code is: %s\n\nIt expires in 10 minutes.", code))

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	return nil
}

// Nop discards mail; used in tests.
type Nop struct {
	LastTo   string
	LastCode string
}

func (n *Nop) SendVerificationCode(to, code string) error {
	n.LastTo = to
	n.LastCode = code
	return nil
}
