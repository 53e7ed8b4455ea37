package notify

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTP delivers notifications as plain-text email.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// Now stamps the Date header; defaults to time.Now.
	Now func() time.Time
}

func NewSMTP(host string, port int, username, password, from string) *SMTP {
	if host == "" {
		return nil
	}
	if port == 0 {
		port = 587
	}
	return &SMTP{Host: host, Port: port, Username: username, Password: password, From: from}
}

func (s *SMTP) Send(ctx context.Context, subject, body, recipient string) error {
	if s == nil || s.Host == "" {
		return fmt.Errorf("smtp disabled")
	}
	if recipient == "" {
		return fmt.Errorf("smtp: empty recipient")
	}

	msg, err := s.message(subject, body, recipient)
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp %s to %s: %w", addr, recipient, err)
	}
	return nil
}

func (s *SMTP) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if s.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.Username),
			mail.WithPassword(s.Password),
		)
	}
	return mail.NewClient(s.Host, opts...)
}

// message renders the mail; non-ASCII subjects are RFC 2047 encoded by go-mail.
func (s *SMTP) message(subject, body, recipient string) (*mail.Msg, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	m := mail.NewMsg()
	if err := m.From(s.From); err != nil {
		return nil, fmt.Errorf("smtp from %q: %w", s.From, err)
	}
	if err := m.To(recipient); err != nil {
		return nil, fmt.Errorf("smtp to %q: %w", recipient, err)
	}
	m.Subject(headerSafe(subject))
	m.SetDateWithValue(now())
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}

func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
