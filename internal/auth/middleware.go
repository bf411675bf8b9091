package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const usernameKey contextKey = "username"

// WithUsername stores the authenticated username in ctx.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromContext returns the username set by Middleware.
func UsernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(usernameKey).(string)
	return u, ok && u != ""
}

// ExtractBearer pulls the token out of an Authorization header value.
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header is required")
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", errors.New("authorization header must be Bearer token")
	}
	return token, nil
}

// Middleware rejects requests without a valid token for a known account.
// onError writes the response; err is ErrTokenExpired or ErrTokenInvalid.
func Middleware(issuer *TokenIssuer, accounts *Accounts, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := ExtractBearer(r.Header.Get("Authorization"))
			if err != nil {
				onError(w, r, ErrTokenInvalid)
				return
			}
			username, err := issuer.Verify(raw)
			if err != nil {
				onError(w, r, err)
				return
			}
			if !accounts.Exists(username) {
				onError(w, r, ErrTokenInvalid)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), username)))
		})
	}
}
