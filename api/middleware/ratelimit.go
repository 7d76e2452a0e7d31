package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	nserrors "github.com/evan-burke/nscheck/internal/errors"
	"github.com/evan-burke/nscheck/internal/limiter"
	"github.com/evan-burke/nscheck/internal/tracing"
)

// ClientIP returns the caller's IP: the first entry of X-Forwarded-For
// when present, otherwise the socket address.
func ClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}

// RateLimitMiddleware rejects callers over their hourly quota with a 429.
func RateLimitMiddleware(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.CheckAllowed(ClientIP(c)) {
			if span := opentracing.SpanFromContext(c.Request.Context()); span != nil {
				tracing.TraceErr(span, nserrors.ErrRateLimited)
			}
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, please try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
