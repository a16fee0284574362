package middleware

import (
	"net/http"
	"time"

	"github.com/rs/xid"
	"sharefolio/internal/service"
)

const SessionCookieName = "sharefolio_session"

const sessionMaxAge = 30 * 24 * time.Hour

// Session makes sure every client carries a session cookie and exposes its
// value through service.SessionIDFromContext.
func Session(secure bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if id, err := xid.FromString(cookie.Value); err == nil {
					sessionID = id.String()
				}
			}

			if sessionID == "" {
				sessionID = xid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(sessionMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(service.WithSessionID(r.Context(), sessionID)))
		})
	}
}
