// Package email delivers the out-of-band messages the identity provider
// needs, currently only password-reset links.
package email

type Sender interface {
	Send(to, subject, textBody string) error
}

// Noop discards every message. Used in tests and when SMTP is unconfigured.
type Noop struct{}

func (Noop) Send(to, subject, textBody string) error { return nil }
