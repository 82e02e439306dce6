// Package bind decodes request bodies (JSON or HTML forms) into structs and
// runs validation on them.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/kashvi-shop/config"
	"github.com/shashiranjanraj/kashvi-shop/pkg/validate"
)

// ErrInvalidJSON is returned for bodies that are not a single JSON value.
var ErrInvalidJSON = errors.New("invalid JSON")

// ErrTooLarge is returned when the body exceeds MAX_BODY_BYTES.
var ErrTooLarge = errors.New("request body too large")

func maxBodyBytes() int64 {
	return int64(config.Int("MAX_BODY_BYTES", 4<<20))
}

// Decode reads r.Body as JSON into dest without validating it.
func Decode(r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w (max %d bytes)", ErrTooLarge, maxErr.Limit)
		}
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// JSON decodes and validates. A decode failure is returned as err; rule
// violations come back as the field map with a nil err.
func JSON(r *http.Request, dest any) (map[string]string, error) {
	if err := Decode(r, dest); err != nil {
		return nil, err
	}
	if fields := validate.Struct(dest); validate.HasErrors(fields) {
		return fields, nil
	}
	return nil, nil
}
