// Package response writes the shop's JSON wire format.
//
// Every body is an envelope stamped with the time the request was answered:
//
//	{"requested_at":"2024-05-01T10:00:00+00:00","data":{...}}
//
// Errors travel inside data as {"error": "..."} or {"errors": {field: msg}}.
// Exception, the last-resort mapping for uncaught failures, puts
// {"error","details"} inside data as well.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/pkg/errs"
)

// APIVersion is sent in the X-Api-Version header of every JSON response.
const APIVersion = "1"

// Now is the clock used for requested_at.
var Now = time.Now

type Envelope struct {
	RequestedAt string `json:"requested_at"`
	Data        any    `json:"data"`
}

func NewEnvelope(data any) Envelope {
	return Envelope{RequestedAt: Now().Format(time.RFC3339), Data: data}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Api-Version", APIVersion)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// JSON writes data wrapped in the envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, NewEnvelope(data))
}

func Success(w http.ResponseWriter, data any) { JSON(w, http.StatusOK, data) }

func Created(w http.ResponseWriter, data any) { JSON(w, http.StatusCreated, data) }

// Error sends {"error": message} inside the envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ValidationError sends 422 with {"errors": {field: message}}.
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fields})
}

func Unauthorized(w http.ResponseWriter) { Error(w, http.StatusUnauthorized, "Unauthorized") }

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	Error(w, http.StatusForbidden, message)
}

// Exception answers an uncaught error. The status comes from *errs.HTTPError
// when present, otherwise 500, and internal details are not leaked.
func Exception(w http.ResponseWriter, err error) {
	JSON(w, errs.StatusOf(err), map[string]string{
		"error":   "An error occurred.",
		"details": errs.MessageOf(err),
	})
}
