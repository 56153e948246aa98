package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
)

const sessionCookieName = "pracosfera_session"

// SessionCodec signs (and optionally encrypts) the session token carried by
// the browser cookie. API clients may instead send the raw token as a
// bearer header.
type SessionCodec struct {
	sc *securecookie.SecureCookie
}

// NewSessionCodec builds a codec from the configured keys. blockKey may be
// nil, in which case cookies are signed but not encrypted.
func NewSessionCodec(hashKey, blockKey []byte) *SessionCodec {
	return &SessionCodec{sc: securecookie.New(hashKey, blockKey)}
}

// SetSessionCookie writes the encoded session token to the response.
func (c *SessionCodec) SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) error {
	encoded, err := c.sc.Encode(sessionCookieName, map[string]string{"token": token})
	if err != nil {
		return err
	}
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
	return nil
}

// ClearSessionCookie expires the session cookie.
func (c *SessionCodec) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest extracts the session token from the Authorization header
// or the session cookie. Undecodable cookies yield an empty token.
func (c *SessionCodec) TokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	value := map[string]string{}
	if err := c.sc.Decode(sessionCookieName, cookie.Value, &value); err != nil {
		return ""
	}
	return value["token"]
}
