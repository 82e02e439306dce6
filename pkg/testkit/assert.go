package testkit

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONBody compares two JSON documents after dropping the ignored
// dotted paths from both. "*" in a path matches every array element or
// object key.
func AssertJSONBody(t *testing.T, name string, expected, actual []byte, ignore []string) {
	t.Helper()

	var expVal, actVal any
	require.NoError(t, json.Unmarshal(expected, &expVal), "[%s] expected body is not valid JSON", name)
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "[%s] response is not valid JSON\nbody: %s", name, actual) {
		return
	}
	for _, path := range ignore {
		parts := strings.Split(path, ".")
		expVal = drop(expVal, parts)
		actVal = drop(actVal, parts)
	}
	assert.Equal(t, expVal, actVal, "[%s] response body mismatch", name)
}

func drop(v any, parts []string) any {
	if len(parts) == 0 {
		return v
	}
	head, rest := parts[0], parts[1:]
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if head != "*" && head != k {
				continue
			}
			if len(rest) == 0 {
				delete(node, k)
			} else {
				node[k] = drop(child, rest)
			}
		}
	case []any:
		for i, child := range node {
			if head != "*" && head != strconv.Itoa(i) {
				continue
			}
			node[i] = drop(child, rest)
		}
	}
	return v
}

// Lookup returns the value at a dotted path ("data.id", "data.0.name").
func Lookup(v any, path string) (any, bool) {
	for _, part := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]any:
			child, ok := node[part]
			if !ok {
				return nil, false
			}
			v = child
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			v = node[i]
		default:
			return nil, false
		}
	}
	return v, true
}

// stringify renders a captured JSON value for substitution. Whole numbers
// lose their ".0".
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		raw, _ := json.Marshal(x)
		return string(raw)
	}
}
