package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/japanesestudent/account-service/internal/httperr"
	"github.com/japanesestudent/account-service/internal/models"
)

// TokenCookieName is the cookie carrying the session token
const TokenCookieName = "token"

// UserFinder loads the user a verified token claim refers to. Implementations
// return models.ErrUserNotFound when the subject no longer exists.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type contextKey string

const userKey contextKey = "authUser"

// RequireRoles returns a request-gating middleware that authenticates the
// request and authorizes it against the explicit set of allowed roles. The
// wrapped handler never runs for an unauthorized request.
//
// The token is taken from the Authorization header (bearer) if present,
// otherwise from the session cookie. The resolved user is attached to the
// request context and retrievable with CurrentUser.
func RequireRoles(codec *TokenCodec, users UserFinder, allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				respondGuardError(w, httperr.Unauthorized(httperr.MsgTokenNotProvided))
				return
			}

			claims, err := codec.Verify(token)
			if err != nil {
				respondGuardError(w, httperr.Unauthorized(httperr.MsgInvalidToken))
				return
			}

			user, err := users.GetByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, models.ErrUserNotFound) {
					respondGuardError(w, httperr.Unauthorized(httperr.MsgUserNoLongerExist))
					return
				}
				respondGuardError(w, httperr.ServerError())
				return
			}

			// Membership check only, roles carry no ordering
			if !slices.Contains(allowed, user.Role) {
				respondGuardError(w, httperr.Forbidden(httperr.MsgPermissionDenied))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// ExtractToken pulls the session token from the Authorization header or the
// session cookie, preferring the header. Returns "" when neither is present.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	cookie, err := r.Cookie(TokenCookieName)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// WithUser returns a context carrying the authenticated identity, the way
// RequireRoles attaches it before invoking the wrapped handler
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser retrieves the authenticated user from context. It returns
// ok == false only when called outside a route wrapped by RequireRoles,
// which is a programming error rather than an auth failure.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// respondGuardError writes the guard's terminal failure without invoking the
// wrapped handler
func respondGuardError(w http.ResponseWriter, httpErr *httperr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Status)
	json.NewEncoder(w).Encode(models.Response{Status: "fail", Message: httpErr.Message})
}
