package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIP returns the address of the calling device. Reverse proxy headers
// are preferred: X-Real-IP first, then the first public hop of
// X-Forwarded-For. Falls back to gin's ClientIP for direct connections.
func ClientIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); isPublicIP(realIP) {
		return realIP
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for _, hop := range hops {
			if ip := strings.TrimSpace(hop); isPublicIP(ip) {
				return ip
			}
		}
		// all hops private: the first one is still the best guess
		if first := strings.TrimSpace(hops[0]); net.ParseIP(first) != nil {
			return first
		}
	}

	return c.ClientIP()
}

// UserAgent returns the User-Agent header, or "Unknown" when absent
func UserAgent(c *gin.Context) string {
	if ua := c.Request.UserAgent(); ua != "" {
		return ua
	}
	return "Unknown"
}

func isPublicIP(s string) bool {
	ip := net.ParseIP(s)
	if ip == nil {
		return false
	}
	return !ip.IsPrivate() && !ip.IsLoopback() && !ip.IsUnspecified() && !ip.IsLinkLocalUnicast()
}
