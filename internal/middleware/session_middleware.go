package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/config"
)

const (
	SessionIDKey    = "session_id"
	SessionIDHeader = "X-Session-ID"
)

// SessionMiddleware makes sure every request carries an anonymous session id.
// Browsers keep it in a cookie; API clients may send it as a header.
func SessionMiddleware(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetHeader(SessionIDHeader)
		if _, err := uuid.Parse(sid); err != nil {
			sid = ""
		}
		if sid == "" {
			if cookie, err := c.Cookie(cfg.CookieName); err == nil {
				if _, err := uuid.Parse(cookie); err == nil {
					sid = cookie
				}
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			GetLoggerFromContext(c).Debug("New session issued", map[string]interface{}{
				"session_id": sid,
			})
		}

		// refreshed on every request so active carts do not expire
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, sid, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
		c.Header(SessionIDHeader, sid)
		c.Set(SessionIDKey, sid)

		c.Next()
	}
}

// GetSessionID returns the session id set by SessionMiddleware.
func GetSessionID(c *gin.Context) string {
	if sid, ok := c.Get(SessionIDKey); ok {
		if s, ok := sid.(string); ok {
			return s
		}
	}
	return ""
}
