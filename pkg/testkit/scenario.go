// Package testkit drives HTTP tests from JSON scenario files.
//
// A scenario file holds one step or an array of steps that run in order
// against one handler and share variables and cookies:
//
//	[
//	  {"name": "login", "requestMethod": "POST", "requestUrl": "/login",
//	   "requestBody": {"email": "{{email}}", "password": "secret123"},
//	   "expectedCode": 200, "capture": {"token": "data.token"}},
//	  {"name": "list", "requestUrl": "/api/products",
//	   "headers": {"Authorization": "Bearer {{token}}"},
//	   "expectedCode": 200, "responseFileName": "list_res.json",
//	   "ignore": ["requested_at", "data.*.id"]}
//	]
//
// "{{name}}" is replaced everywhere in a step (url, headers, bodies and the
// expected response) before it runs. Inside inline JSON, where a bare
// placeholder would not parse, the quoted form "{{#name}}" is replaced
// together with its quotes, so a captured id goes back in as a number. Ignored paths are removed from both
// sides before the JSON comparison.
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Vars are the {{name}} substitutions shared by the steps of a run.
type Vars map[string]string

// Scenario is one request and what it must answer.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string              `json:"requestMethod"`
	RequestURL      string              `json:"requestUrl"`
	RequestBody     json.RawMessage     `json:"requestBody"`
	RequestFileName string              `json:"requestFileName"`
	Form            map[string][]string `json:"form"`
	Headers         map[string]string   `json:"headers"`

	ExpectedCode     int               `json:"expectedCode"`
	ExpectedHeaders  map[string]string `json:"expectedHeaders"`
	ResponseBody     json.RawMessage   `json:"responseBody"`
	ResponseFileName string            `json:"responseFileName"`
	Ignore           []string          `json:"ignore"`

	// Capture maps a variable name to a dotted path in the response JSON.
	Capture map[string]string `json:"capture"`

	dir string
}

// Load reads a file holding one scenario object or an array of them.
func Load(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var steps []*Scenario
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(data, &steps)
	} else {
		var s Scenario
		err = json.Unmarshal(data, &s)
		steps = []*Scenario{&s}
	}
	if err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	for i, s := range steps {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: %q step %d: %w", abs, i, err)
		}
		s.dir = filepath.Dir(abs)
	}
	return steps, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	s.RequestMethod = strings.ToUpper(s.RequestMethod)
	return nil
}

func (s *Scenario) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// requestBody is the inline body, else the request file, else nil.
func (s *Scenario) requestBody() ([]byte, error) {
	if len(s.RequestBody) > 0 {
		return s.RequestBody, nil
	}
	if s.RequestFileName == "" {
		return nil, nil
	}
	return os.ReadFile(s.resolve(s.RequestFileName))
}

// expectedBody is the inline expectation, else the response file, else nil.
func (s *Scenario) expectedBody() ([]byte, error) {
	if len(s.ResponseBody) > 0 {
		return s.ResponseBody, nil
	}
	if s.ResponseFileName == "" {
		return nil, nil
	}
	return os.ReadFile(s.resolve(s.ResponseFileName))
}

// Substitute replaces every {{name}} in text, and every "{{#name}}"
// (quotes included) with the bare value.
func (v Vars) Substitute(text string) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	for k, val := range v {
		text = strings.ReplaceAll(text, `"{{#`+k+`}}"`, val)
		text = strings.ReplaceAll(text, "{{"+k+"}}", val)
	}
	return text
}
