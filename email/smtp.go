package email

import (
	mail "github.com/go-mail/mail"
	"github.com/pkg/errors"
)

type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, User: user, Pass: pass}
}

func (s *SMTPSender) Send(to, subject, textBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	if err := d.DialAndSend(m); err != nil {
		return errors.Wrap(err, "[SMTPSender.Send] DialAndSend")
	}
	return nil
}
