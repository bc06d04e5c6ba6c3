package gate

import (
	"net"
	"net/http"
	"strings"

	"github.com/daypass/chat-gateway-go/internal/middleware"
)

// clientIdentity derives the rate-limit key for a request: the authenticated
// user id when present and preferred, otherwise a proxy derived from network
// origin headers. The identity is never persisted.
func (g *Gate) clientIdentity(r *http.Request) string {
	if g.preferUserIdentity {
		if userID := middleware.GetUserID(r.Context()); userID != "" {
			return "user:" + userID
		}
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.Index(forwarded, ","); i >= 0 {
			return strings.TrimSpace(forwarded[:i])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
