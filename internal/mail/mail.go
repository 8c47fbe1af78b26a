// Package mail delivers password-reset notifications over SMTP.
package mail

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"ailablog/config"
)

type Mailer struct {
	cfg config.SMTPConfig
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendResetEmail mails the reset link to the user. Delivery is fire-and-forget
// from the caller's point of view; an error here never fails the request.
func (m *Mailer) SendResetEmail(to, token string, ttl time.Duration) error {
	body := fmt.Sprintf(`<p>To reset your password, follow this link:</p>
<p><a href="/reset_password/%s">/reset_password/%s</a></p>
<p>The link is valid for %d minutes. If you have not made this request,
simply ignore this letter — no changes will be made.</p>`,
		token, token, int(ttl.Minutes()))

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password change request")
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return d.DialAndSend(msg)
}
