package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dwalters/cardroom/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// GetSession retrieves the request's session from the context.
// It is never nil for handlers behind the Session middleware.
func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// Session returns middleware that guarantees every request a session: an
// existing one resolved from the cookie, or a fresh one with its cookie set
// on the response. Raw cookie values never travel past this boundary.
func Session(store session.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := resolve(r, store)
			if sess == nil {
				var err error
				sess, err = store.Create(r.Context())
				if err != nil {
					logger.Error("could not create session", slog.String("error", err.Error()))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     session.CookieName,
					Value:    string(sess.ID),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolve(r *http.Request, store session.Store) *session.Session {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil
	}
	sess, err := store.Get(r.Context(), session.ID(cookie.Value))
	if err != nil {
		return nil
	}
	return sess
}
