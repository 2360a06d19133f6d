package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// ActionContextKey holds the resolved action name once dispatch has parsed it.
const ActionContextKey = "action"

// RequestLogger writes one line per request with the action and caller role.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if action := c.GetString(ActionContextKey); action != "" {
			attrs = append(attrs, slog.String("action", action), slog.String("role", string(CurrentClaims(c).Role)))
		}
		logger.Info("webpot request", attrs...)
	}
}
