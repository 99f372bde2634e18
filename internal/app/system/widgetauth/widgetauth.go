// internal/app/system/widgetauth/widgetauth.go

// Package widgetauth tracks anonymous visitors of the public chatbot widget
// with a signed cookie. There is no account behind a visitor; the ID only
// groups a visitor's widget messages.
package widgetauth

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const cookieName = "chatforge-widget-visitor"

// Sessions signs and verifies widget visitor cookies.
type Sessions struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// New builds a Sessions using key for HMAC signing. Secure cookies are for
// production deployments behind TLS.
func New(key string, secure bool) *Sessions {
	return &Sessions{
		sc:     securecookie.New([]byte(key), nil),
		secure: secure,
	}
}

// VisitorID returns the visitor ID from the request cookie, minting and
// setting a fresh one when the cookie is absent or fails verification.
func (s *Sessions) VisitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cookieName); err == nil {
		var id string
		if err := s.sc.Decode(cookieName, c.Value, &id); err == nil && id != "" {
			return id
		}
	}

	id := uuid.NewString()
	encoded, err := s.sc.Encode(cookieName, id)
	if err != nil {
		// Unsigned fallback would defeat the point; serve without a cookie.
		return id
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/widget",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
