package appMiddleware

import (
	"context"
	"net/http"

	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

// Session loads or creates the caller's auth session from the session
// cookie and adds it to the request context.
func Session(store *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(SessionCookie); err == nil {
				id = c.Value
			}

			session := store.Touch(id)
			if session.ID != id {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    session.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   r.TLS != nil,
					MaxAge:   int(store.ttl.Seconds()),
				})
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session put there by Session.
func SessionFromContext(ctx context.Context) (types.AuthSession, bool) {
	session, ok := ctx.Value(SessionKey).(types.AuthSession)
	return session, ok
}

// TokenFromContext returns the bearer token for remote calls, or "".
func TokenFromContext(ctx context.Context) string {
	session, _ := SessionFromContext(ctx)
	return session.Token
}

// WithSession is used by tests and background callers to attach a session.
func WithSession(ctx context.Context, session types.AuthSession) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
