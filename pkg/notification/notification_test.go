package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-shop/pkg/mail"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
)

type lowStock struct{ via []string }

func (n lowStock) Via() []string { return n.via }

func (lowStock) ToMail() MailData {
	return MailData{Subject: "Widget is low", Text: "2 left"}
}

func (lowStock) ToWebhook() WebhookData {
	return WebhookData{Event: "stock.low", Payload: map[string]any{"stock": 2}}
}

type recordingChannel struct {
	name string
	err  error
	got  []string
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(_ context.Context, address string, _ Notification) error {
	c.got = append(c.got, address)
	return c.err
}

type mockChannel struct{ mock.Mock }

func (m *mockChannel) Name() string { return "mail" }

func (m *mockChannel) Send(ctx context.Context, address string, n Notification) error {
	return m.Called(ctx, address, n).Error(0)
}

func TestSendPassesNotificationThrough(t *testing.T) {
	ch := &mockChannel{}
	note := lowStock{via: []string{"mail"}}
	ch.On("Send", mock.Anything, "owner@test", note).Return(nil).Once()

	require.NoError(t, New(ch).Send(context.Background(), "owner@test", note))
	ch.AssertExpectations(t)
}

func TestSendVisitsRequestedChannels(t *testing.T) {
	a := &recordingChannel{name: "a"}
	b := &recordingChannel{name: "b"}
	n := New(a, b)

	require.NoError(t, n.Send(context.Background(), "owner@test", lowStock{via: []string{"b", "missing"}}))
	assert.Empty(t, a.got)
	assert.Equal(t, []string{"owner@test"}, b.got)
}

func TestSendJoinsFailures(t *testing.T) {
	boom := errors.New("boom")
	before := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("bad", "error"))

	n := New(&recordingChannel{name: "bad", err: boom}, &recordingChannel{name: "skip", err: ErrSkipped})
	err := n.Send(context.Background(), "x@test", lowStock{via: []string{"bad", "skip"}})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrSkipped)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("bad", "error")))
}

func TestMailChannelSkipsWithoutHost(t *testing.T) {
	err := MailChannel{SMTP: mail.SMTP{}}.Send(context.Background(), "x@test", lowStock{})
	assert.ErrorIs(t, err, ErrSkipped)
}

func TestWebhookChannelPosts(t *testing.T) {
	var body struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Shop-Event")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ch := WebhookChannel{URL: srv.URL, Attempts: 2, Backoff: time.Millisecond}
	require.NoError(t, ch.Send(context.Background(), "", lowStock{}))
	assert.Equal(t, "stock.low", header)
	assert.Equal(t, "stock.low", body.Event)
	assert.Equal(t, float64(2), body.Data["stock"])
}

func TestWebhookChannelSkipsWithoutURL(t *testing.T) {
	err := WebhookChannel{}.Send(context.Background(), "", lowStock{})
	assert.ErrorIs(t, err, ErrSkipped)
}
