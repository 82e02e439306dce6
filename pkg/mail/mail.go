// Package mail sends plain SMTP messages.
//
//	err := mail.To("owner@example.com").
//	    Subject("Widget is running low").
//	    Text("3 left in stock.").
//	    Send(ctx)
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/config"
)

// ErrNotConfigured is returned by Send while MAIL_HOST is unset.
var ErrNotConfigured = errors.New("mail: MAIL_HOST not configured")

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// FromConfig reads the MAIL_* keys.
func FromConfig() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", ""),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "shop@localhost"),
		FromName: config.Get("MAIL_FROM_NAME", "Shop"),
	}
}

func (s SMTP) Configured() bool { return s.Host != "" }

// sendFunc matches smtp.SendMail; tests replace it.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

var send sendFunc = smtp.SendMail

type Message struct {
	to      []string
	cc      []string
	subject string
	body    string
	html    bool
	cfg     SMTP
}

func To(addresses ...string) *Message {
	return &Message{to: addresses, cfg: FromConfig()}
}

func (m *Message) CC(addresses ...string) *Message {
	m.cc = append(m.cc, addresses...)
	return m
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

func (m *Message) Text(body string) *Message {
	m.body, m.html = body, false
	return m
}

func (m *Message) HTML(body string) *Message {
	m.body, m.html = body, true
	return m
}

// Using overrides the SMTP settings read from config.
func (m *Message) Using(cfg SMTP) *Message {
	m.cfg = cfg
	return m
}

// Send delivers the message. Port 465 uses implicit TLS; other ports let
// net/smtp negotiate STARTTLS.
func (m *Message) Send(ctx context.Context) error {
	cfg := m.cfg
	if !cfg.Configured() {
		return ErrNotConfigured
	}
	if len(m.to) == 0 {
		return errors.New("mail: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	rcpt := append(append([]string{}, m.to...), m.cc...)
	raw := m.build(time.Now())

	if cfg.Port == "465" {
		return sendTLS(ctx, addr, cfg.Host, auth, cfg.From, rcpt, raw)
	}
	if err := send(addr, auth, cfg.From, rcpt, raw); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

func sendTLS(ctx context.Context, addr, host string, auth smtp.Auth, from string, to []string, raw []byte) error {
	d := tls.Dialer{Config: &tls.Config{ServerName: host}}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mail: tls dial: %w", err)
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail: smtp client: %w", err)
	}
	defer c.Close()

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, r := range to {
		if err := c.Rcpt(r); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (m *Message) build(now time.Time) []byte {
	contentType := "text/plain"
	if m.html {
		contentType = "text/html"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.to, ", "))
	if len(m.cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(m.cc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", m.subject)
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n\r\n", contentType)
	b.WriteString(m.body)
	return []byte(b.String())
}
