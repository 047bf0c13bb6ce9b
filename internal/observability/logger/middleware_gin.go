package logger

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vyapardesk/vyapardesk/internal/observability/obscontext"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// GinMiddleware assigns a request id and emits one access log line per request.
// Typeahead suggestion endpoints are logged at debug to keep the log volume sane.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, requestID)

		ctx := obscontext.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		log := FromContext(c.Request.Context()).With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request failed", zap.String("errors", c.Errors.String()))
		case c.Writer.Status() >= 400:
			log.Warn("request rejected", zap.String("errors", c.Errors.String()))
		case strings.HasSuffix(c.FullPath(), "/suggest"):
			log.Debug("request completed")
		default:
			log.Info("request completed")
		}
	}
}
