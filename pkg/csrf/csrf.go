// Package csrf issues and checks intent-bound tokens for state-changing
// form posts. A token is an encrypted (user, intent, issued-at) triple, so
// nothing is stored server side and a token minted for one user or one
// action is useless for any other.
package csrf

import (
	"errors"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/pkg/crypt"
)

// FieldName is the form field the token is posted in.
const FieldName = "_token"

// TTL is how long an issued token is accepted.
var TTL = 2 * time.Hour

var now = time.Now

var ErrInvalid = errors.New("csrf: invalid token")

type payload struct {
	User   uint   `json:"u"`
	Intent string `json:"i"`
	At     int64  `json:"t"`
}

// Issue mints a token for user to perform intent (e.g. "delete12").
func Issue(user uint, intent string) (string, error) {
	return crypt.EncryptJSON(payload{User: user, Intent: intent, At: now().Unix()})
}

// Verify checks token was issued to user for intent and has not expired.
func Verify(token string, user uint, intent string) error {
	if token == "" {
		return ErrInvalid
	}
	var p payload
	if err := crypt.DecryptJSON(token, &p); err != nil {
		return ErrInvalid
	}
	if p.User != user || p.Intent != intent {
		return ErrInvalid
	}
	issued := time.Unix(p.At, 0)
	if now().Sub(issued) > TTL || issued.After(now().Add(time.Minute)) {
		return ErrInvalid
	}
	return nil
}
