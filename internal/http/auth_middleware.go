package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"schoolhub/backend/internal/auth"
	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/session"
	"schoolhub/backend/internal/store"
)

// RequireAuth resolves the bearer token to a live session and loads the
// session's user. Sessions of users that were banned or deleted since login are
// ended here.
func RequireAuth(sessions *session.Manager, store *store.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				http.Error(w, "missing token", http.StatusUnauthorized)
				return
			}

			sess, err := sessions.Resolve(token)
			if err != nil {
				logger.Debug("session rejected", "path", r.URL.Path, "err", err)
				if errors.Is(err, session.ErrExpired) {
					http.Error(w, "session expired", http.StatusUnauthorized)
					return
				}
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			user, ok := store.GetUser(r.Context(), sess.UserID)
			if !ok {
				if !store.Connected() {
					http.Error(w, "store unreachable", http.StatusServiceUnavailable)
					return
				}
				sessions.End(sess.ID)
				http.Error(w, "account no longer exists", http.StatusUnauthorized)
				return
			}
			if err := auth.CanHoldSession(*user); err != nil {
				sessions.End(sess.ID)
				http.Error(w, err.Error(), http.StatusForbidden)
				return
			}

			ctx := httpctx.WithUser(r.Context(), user)
			ctx = httpctx.WithSession(ctx, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) string {
	const prefix = "Bearer "
	if len(value) <= len(prefix) || value[:len(prefix)] != prefix {
		return ""
	}
	return value[len(prefix):]
}
