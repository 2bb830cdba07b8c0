package web

import (
	"context"
	"net/http"

	"github.com/desertthunder/mixtape/internal/session"
)

type sessionKey struct{}

// withSession attaches the browser's session to the request context, issuing a cookie for new browsers.
func (a *App) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}

		sess := a.sessions.GetOrCreate(id)
		if sess.ID != id {
			http.SetCookie(w, a.cookie(sess.ID, 0))
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *App) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (a *App) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, a.cookie("", -1))
}

// sessionFrom returns the session attached by withSession.
func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	return sess
}
