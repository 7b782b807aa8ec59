package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// Logger writes one structured line per request; probes log at debug.
func Logger(log logger.Interface) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		args := []any{
			"method", param.Method,
			"path", param.Path,
			"status", param.StatusCode,
			"latency", param.Latency,
			"client_ip", param.ClientIP,
		}

		if param.ErrorMessage != "" {
			args = append(args, "error", param.ErrorMessage)
		}

		switch {
		case param.StatusCode >= 500:
			log.Errorw("status request completed", args...)
		case param.StatusCode >= 400:
			log.Warnw("status request completed", args...)
		default:
			log.Debugw("status request completed", args...)
		}

		return ""
	})
}
