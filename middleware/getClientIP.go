package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TrustProxies limits which peers may set X-Forwarded-For and X-Real-IP.
// An empty list trusts no one, so the client IP is always the TCP peer.
func TrustProxies(r *gin.Engine, proxies []string) error {
	if len(proxies) == 0 {
		return r.SetTrustedProxies(nil)
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		return err
	}
	zap.L().Info("trusting forwarded headers", zap.Strings("proxies", proxies))
	return nil
}

// clientIP is the address used for rate limiting and request logs.
func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
