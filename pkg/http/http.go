// Package http is the outbound client used for webhooks.
//
//	resp, err := http.Post(url).
//	    Header("X-Shop-Event", "stock.low").
//	    Body(payload).
//	    Retry(3, time.Second).
//	    Send(ctx)
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is shared by every outgoing request.
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

// ResetTransport restores the production transport after a test swapped it.
func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// StatusError is returned when the final attempt got a non-2xx answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: status %d: %s", e.Code, e.Body)
}

type Request struct {
	method    string
	url       string
	headers   map[string]string
	body      any
	timeout   time.Duration
	attempts  int
	retryWait time.Duration
}

func Get(url string) *Request  { return newRequest(gohttp.MethodGet, url) }
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:    method,
		url:       url,
		headers:   map[string]string{"Accept": "application/json"},
		timeout:   10 * time.Second,
		attempts:  1,
		retryWait: 500 * time.Millisecond,
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Body sets the payload. Strings and byte slices are sent as-is; anything
// else is JSON-encoded.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Timeout bounds each attempt.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets the total attempts and the first backoff, which doubles after
// every failure. Only network errors and 5xx answers are retried.
func (r *Request) Retry(attempts int, wait time.Duration) *Request {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.retryWait = wait
	return r
}

// Send runs the request. A non-2xx final answer is returned together with a
// *StatusError.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	payload, contentType, err := r.encode()
	if err != nil {
		return nil, err
	}

	wait := r.retryWait
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, err := r.do(ctx, payload, contentType)
		if err == nil && resp.StatusCode < 500 {
			if !resp.OK() {
				return resp, &StatusError{Code: resp.StatusCode, Body: resp.Text()}
			}
			return resp, nil
		}
		if err == nil {
			lastErr = &StatusError{Code: resp.StatusCode, Body: resp.Text()}
		} else {
			lastErr = err
		}
		if attempt == r.attempts {
			break
		}

		logger.WithCtx(ctx).Warn("http: attempt failed, retrying",
			"url", r.url, "attempt", attempt, "backoff", wait, "error", lastErr)
		select {
		case <-ctx.Done():
			return nil, errors.Join(lastErr, ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	return nil, fmt.Errorf("http: %s %s failed after %d attempts: %w", r.method, r.url, r.attempts, lastErr)
}

func (r *Request) do(ctx context.Context, payload []byte, contentType string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

func (r *Request) encode() ([]byte, string, error) {
	switch v := r.body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(v), "text/plain", nil
	case []byte:
		return v, "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return b, "application/json", nil
	}
}

type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

func (r *Response) Text() string { return string(r.Raw) }
