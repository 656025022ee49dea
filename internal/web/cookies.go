package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName is the name of the session cookie
	CookieName = "cbtbot_session"
	// CookieMaxAge is how long the browser keeps the cookie
	CookieMaxAge = 24 * time.Hour
)

// SetSessionCookie sets an HTTP-only session cookie
func SetSessionCookie(w http.ResponseWriter, sessionID string, secure bool) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	http.SetCookie(w, cookie)
}

// GetSessionCookie reads the session ID from the cookie. Values that are not
// UUIDs are rejected.
func GetSessionCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func newSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// existingKey returns the conversation key named by the request's cookie, or
// "" when it has none. Read-only handlers use it so that visits without a
// cookie do not open sessions.
func (s *Server) existingKey(r *http.Request) string {
	sid, ok := GetSessionCookie(r)
	if !ok {
		return ""
	}
	return "web:" + sid
}

// sessionKey returns the conversation key for the request, issuing a new
// cookie when the browser has none.
func (s *Server) sessionKey(w http.ResponseWriter, r *http.Request) (string, error) {
	sid, ok := GetSessionCookie(r)
	if !ok {
		var err error
		if sid, err = newSessionID(); err != nil {
			return "", err
		}
		s.log.Debug().Str("path", r.URL.Path).Msg("issuing new session cookie")
	}
	// Refresh the expiry on every visit
	SetSessionCookie(w, sid, s.opts.CookieSecure)
	return "web:" + sid, nil
}
