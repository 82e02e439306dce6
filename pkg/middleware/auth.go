package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/shashiranjanraj/kashvi-shop/pkg/auth"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/response"
	"github.com/shashiranjanraj/kashvi-shop/pkg/session"
)

// Session keys written at login and read by Authenticate.
const (
	SessionUserID = "user_id"
	SessionRoles  = "roles"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uint
	Roles  []string
}

func (p Principal) HasRole(role string) bool { return slices.Contains(p.Roles, role) }

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored by Authenticate.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != 0
}

func UserIDFromCtx(r *http.Request) (uint, bool) {
	p, ok := PrincipalFrom(r.Context())
	return p.UserID, ok
}

func RolesFromCtx(r *http.Request) []string {
	p, _ := PrincipalFrom(r.Context())
	return p.Roles
}

// Authenticate resolves the caller from an "Authorization: Bearer" token,
// falling back to the login session. Unauthenticated requests get 401.
// A bearer header that is present but invalid is rejected outright rather
// than falling back to the session.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := resolve(r)
		if !ok {
			response.Unauthorized(w)
			return
		}
		ctx := WithPrincipal(r.Context(), p)
		ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", p.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func resolve(r *http.Request) (Principal, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		token, found := strings.CutPrefix(h, "Bearer ")
		if !found {
			return Principal{}, false
		}
		claims, err := auth.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			logger.WithCtx(r.Context()).Debug("auth: bearer rejected", "error", err)
			return Principal{}, false
		}
		return Principal{UserID: claims.UserID, Roles: claims.Roles}, true
	}

	sess := session.FromCtx(r)
	uid, ok := sess.GetUint(SessionUserID)
	if !ok {
		return Principal{}, false
	}
	return Principal{UserID: uid, Roles: sess.GetStrings(SessionRoles)}, true
}
