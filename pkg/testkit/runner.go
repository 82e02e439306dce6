package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Runner fires scenarios at one handler, carrying variables and cookies
// from step to step.
type Runner struct {
	Handler http.Handler
	Vars    Vars
	cookies map[string]*http.Cookie
}

func NewRunner(h http.Handler, vars Vars) *Runner {
	if vars == nil {
		vars = Vars{}
	}
	return &Runner{Handler: h, Vars: vars, cookies: map[string]*http.Cookie{}}
}

// RunFile loads path and runs its steps in order, each as a subtest.
func (r *Runner) RunFile(t *testing.T, path string) {
	t.Helper()
	steps, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range steps {
		if !t.Run(s.Name, func(t *testing.T) { r.Step(t, s) }) {
			return
		}
	}
}

// Step runs one scenario and returns the recorded response.
func (r *Runner) Step(t *testing.T, s *Scenario) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	contentType := "application/json"
	if len(s.Form) > 0 {
		form := url.Values{}
		for k, vs := range s.Form {
			for _, v := range vs {
				form.Add(k, r.Vars.Substitute(v))
			}
		}
		body = bytes.NewBufferString(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	} else {
		raw, err := s.requestBody()
		if err != nil {
			t.Fatalf("[%s] read request body: %v", s.Name, err)
		}
		if raw != nil {
			body = bytes.NewBufferString(r.Vars.Substitute(string(raw)))
		}
	}

	req := httptest.NewRequest(s.RequestMethod, r.Vars.Substitute(s.RequestURL), body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, r.Vars.Substitute(v))
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	r.Handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(r.cookies, c.Name)
			continue
		}
		r.cookies[c.Name] = c
	}

	assert.Equal(t, s.ExpectedCode, rec.Code, "[%s] status mismatch\nbody: %s", s.Name, rec.Body.String())
	for k, v := range s.ExpectedHeaders {
		assert.Equal(t, r.Vars.Substitute(v), rec.Header().Get(k), "[%s] header %s", s.Name, k)
	}

	expected, err := s.expectedBody()
	if err != nil {
		t.Fatalf("[%s] read expected body: %v", s.Name, err)
	}
	if expected != nil {
		AssertJSONBody(t, s.Name, []byte(r.Vars.Substitute(string(expected))), rec.Body.Bytes(), s.Ignore)
	}

	if len(s.Capture) > 0 {
		var doc any
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("[%s] capture from non-JSON body: %v", s.Name, err)
		}
		for name, path := range s.Capture {
			v, ok := Lookup(doc, path)
			if !assert.True(t, ok, "[%s] capture %s: no value at %q", s.Name, name, path) {
				continue
			}
			r.Vars[name] = stringify(v)
		}
	}
	return rec
}

// Run is the one-shot form of NewRunner(h, vars).RunFile(t, path).
func Run(t *testing.T, h http.Handler, path string, vars Vars) {
	t.Helper()
	NewRunner(h, vars).RunFile(t, path)
}
