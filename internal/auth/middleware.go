package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/task-manager-api/internal/httputil"
	"github.com/redmonkez12/task-manager-api/internal/logging"
	"github.com/redmonkez12/task-manager-api/internal/user"
)

type tokenContextKey struct{}

// Middleware handles authentication for protected routes
type Middleware struct {
	sessions *Sessions
}

func NewMiddleware(sessions *Sessions) *Middleware {
	return &Middleware{sessions: sessions}
}

// RequireAuth resolves the bearer token to a user and stores both in the
// request context. Every failure yields the same 401 response.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token := bearerToken(r)

		u, err := m.sessions.Resolve(r.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrUnauthenticated) {
				logger.Error("failed to resolve session", "error", err.Error())
			}
			httputil.RespondUnauthenticated(w)
			return
		}

		logging.AddField(r.Context(), "user_id", u.ID.String())

		ctx := user.NewContext(r.Context(), u)
		ctx = NewTokenContext(ctx, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// NewTokenContext returns a copy of ctx carrying the presented bearer token
func NewTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the bearer token stored by RequireAuth
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	return token, ok && token != ""
}
