package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"cineseat/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Middleware applies per-IP sliding-window limits keyed by route class.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// A broken limiter must not take the API down with it.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getRateLimitType(path string) RateLimitType {
	switch {
	// Health/monitoring endpoints
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/status"):
		return RateLimitTypeHealth

	// Session provisioning (JWT-gated)
	case strings.Contains(path, "/sessions") && !strings.Contains(path, "/seats"):
		return RateLimitTypeAdmin

	// Contended write endpoints attract retry storms; keep them tight.
	case strings.Contains(path, "/seats/hold"),
		strings.Contains(path, "/seats/release"):
		return RateLimitTypeHold

	case strings.Contains(path, "/checkout/"),
		strings.Contains(path, "/payments/"):
		return RateLimitTypeCheckout

	// Public browsing endpoints
	case strings.Contains(path, "/seats"),
		strings.Contains(path, "/tickets"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// getClientIP extracts the real client IP
func getClientIP(c *gin.Context) string {
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}
