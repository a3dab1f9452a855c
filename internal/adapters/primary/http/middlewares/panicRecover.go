package middlewares

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// RecoveryLogger ловит панику хендлера и отвечает 500, если ответ ещё не начат
func RecoveryLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			log.ErrorContext(c.Request.Context(), "panic recovered",
				"panic", r,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
				"stack", string(debug.Stack()),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}()
		c.Next()
	}
}
