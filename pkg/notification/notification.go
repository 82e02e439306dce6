// Package notification delivers a message through the channels it asks for.
//
//	type LowStock struct{ ... }
//	func (n LowStock) Via() []string                       { return []string{"mail", "webhook"} }
//	func (n LowStock) ToMail() notification.MailData       { ... }
//	func (n LowStock) ToWebhook() notification.WebhookData { ... }
//
//	err := notifier.Send(ctx, "owner@example.com", LowStock{...})
//
// A channel that is not configured, or that the notification does not
// support, is skipped rather than failed.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/config"
	shophttp "github.com/shashiranjanraj/kashvi-shop/pkg/http"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/mail"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
)

// ErrSkipped tells the notifier a channel had nothing to do.
var ErrSkipped = errors.New("notification: channel skipped")

type Notification interface {
	Via() []string
}

type MailData struct {
	To      string // overrides the recipient address
	Subject string
	Text    string
}

type Mailable interface {
	ToMail() MailData
}

type WebhookData struct {
	URL     string // overrides the channel default
	Event   string
	Payload any
}

type Webhookable interface {
	ToWebhook() WebhookData
}

// Channel delivers one notification to one address.
type Channel interface {
	Name() string
	Send(ctx context.Context, address string, n Notification) error
}

type Notifier struct {
	channels map[string]Channel
}

func New(channels ...Channel) *Notifier {
	n := &Notifier{channels: make(map[string]Channel, len(channels))}
	for _, ch := range channels {
		n.channels[ch.Name()] = ch
	}
	return n
}

// FromConfig builds the mail and webhook channels from MAIL_* and
// ALERT_WEBHOOK_URL.
func FromConfig() *Notifier {
	return New(
		MailChannel{SMTP: mail.FromConfig()},
		WebhookChannel{URL: config.AlertWebhookURL(), Attempts: 3, Backoff: time.Second},
	)
}

// Send tries every channel in n.Via() and joins the failures.
func (nt *Notifier) Send(ctx context.Context, address string, n Notification) error {
	var errs []error
	for _, name := range n.Via() {
		ch, ok := nt.channels[name]
		if !ok {
			metrics.NotificationsTotal.WithLabelValues(name, "skipped").Inc()
			continue
		}
		err := ch.Send(ctx, address, n)
		switch {
		case errors.Is(err, ErrSkipped):
			metrics.NotificationsTotal.WithLabelValues(name, "skipped").Inc()
		case err != nil:
			metrics.NotificationsTotal.WithLabelValues(name, "error").Inc()
			logger.WithCtx(ctx).Error("notification: channel failed", "channel", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		default:
			metrics.NotificationsTotal.WithLabelValues(name, "sent").Inc()
		}
	}
	return errors.Join(errs...)
}

type MailChannel struct {
	SMTP mail.SMTP
}

func (MailChannel) Name() string { return "mail" }

func (c MailChannel) Send(ctx context.Context, address string, n Notification) error {
	m, ok := n.(Mailable)
	if !ok || !c.SMTP.Configured() {
		return ErrSkipped
	}
	d := m.ToMail()
	to := d.To
	if to == "" {
		to = address
	}
	if to == "" {
		return ErrSkipped
	}
	return mail.To(to).Subject(d.Subject).Text(d.Text).Using(c.SMTP).Send(ctx)
}

type WebhookChannel struct {
	URL      string
	Attempts int
	Backoff  time.Duration
}

func (WebhookChannel) Name() string { return "webhook" }

func (c WebhookChannel) Send(ctx context.Context, _ string, n Notification) error {
	w, ok := n.(Webhookable)
	if !ok {
		return ErrSkipped
	}
	d := w.ToWebhook()
	url := d.URL
	if url == "" {
		url = c.URL
	}
	if url == "" {
		return ErrSkipped
	}

	req := shophttp.Post(url).Body(map[string]any{"event": d.Event, "data": d.Payload})
	if d.Event != "" {
		req.Header("X-Shop-Event", d.Event)
	}
	if c.Attempts > 1 {
		req.Retry(c.Attempts, c.Backoff)
	}
	_, err := req.Send(ctx)
	return err
}
