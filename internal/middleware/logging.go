package middleware

import (
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request with latency and status
func RequestLogger(logger *pkg.Logger) gin.HandlerFunc {
	log := logger.WithPrefix("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := map[string]interface{}{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}
		if userID, ok := GetUserID(c); ok {
			fields["userId"] = userID.Hex()
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request failed", fields)
		case c.Writer.Status() >= 400:
			log.Warn("request rejected", fields)
		default:
			log.Info("request", fields)
		}
	}
}

// Recovery converts panics into 500 responses instead of dropped connections
func Recovery(logger *pkg.Logger) gin.HandlerFunc {
	log := logger.WithPrefix("recovery")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", map[string]interface{}{
					"panic": r,
					"path":  c.Request.URL.Path,
				})
				pkg.ErrorResponse(c, pkg.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}
