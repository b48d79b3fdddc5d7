package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todoitems/pkg/logger"
)

type HTTPSEnforcer struct {
	enabled bool
	logger  *logger.Logger
}

func NewHTTPSEnforcer(enabled bool, log *logger.Logger) *HTTPSEnforcer {
	return &HTTPSEnforcer{
		enabled: enabled,
		logger:  log,
	}
}

// Middleware redirects plain HTTP requests to HTTPS. TLS connections,
// requests forwarded as https and local hosts pass through.
func (he *HTTPSEnforcer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !he.enabled || c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Next()
			return
		}

		host := c.Request.Host
		if strings.Contains(host, "localhost") || strings.Contains(host, "127.0.0.1") {
			c.Next()
			return
		}

		httpsURL := "https://" + host + c.Request.URL.RequestURI()

		he.logger.Ctx(c.Request.Context()).Info("Redirecting to HTTPS",
			zap.String("original_url", c.Request.URL.String()),
			zap.String("https_url", httpsURL),
		)

		c.Redirect(http.StatusMovedPermanently, httpsURL)
		c.Abort()
	}
}
