package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
)

const apiPrefix = "/api/v1"

// Matched against the path with apiPrefix removed.
var pageViewSkipPrefixes = []string{"/staff", "/uploads", "/static", "/health", "/ws"}

// PageViewMiddleware records the first GET of each session per day for the
// traffic report. Failures are logged and never affect the response.
func PageViewMiddleware(views service.PageViewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet || skipPageView(c.Request.URL.Path) {
			return
		}

		visit := service.PageVisit{
			SessionKey: GetSessionID(c),
			IP:         ClientIP(c.Request),
			UserAgent:  c.Request.UserAgent(),
			Path:       c.Request.URL.Path,
		}
		if userID, ok := GetUserID(c); ok {
			visit.UserID = &userID
		}

		if _, err := views.Record(visit); err != nil {
			GetLoggerFromContext(c).Warn("Failed to record page view", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func skipPageView(path string) bool {
	if rest := strings.TrimPrefix(path, apiPrefix); rest != path && (rest == "" || rest[0] == '/') {
		path = rest
	}
	for _, prefix := range pageViewSkipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ClientIP is the first X-Forwarded-For entry, else the remote address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
