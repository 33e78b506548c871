package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"servicehub/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates X-Request-ID, generating one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// ErrorLogger logs every request, recovers from panics and records metrics.
// m may be nil.
func ErrorLogger(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
				})
				logRequest(logger, c, start, zap.String("type", "panic"), zap.Error(err), zap.ByteString("stack", debug.Stack()))
				observe(m, c, start)
				return
			}

			fields := []zap.Field{}
			for _, e := range c.Errors {
				fields = append(fields, zap.NamedError(fmt.Sprintf("error_%d", len(fields)), e.Err))
			}
			logRequest(logger, c, start, fields...)
			observe(m, c, start)
		}()

		c.Next()
	}
}

func logRequest(logger *zap.Logger, c *gin.Context, start time.Time, extra ...zap.Field) {
	status := c.Writer.Status()
	fields := append([]zap.Field{
		zap.Int("status", status),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.String("client_ip", c.ClientIP()),
		zap.Int64("user_id", c.GetInt64(CtxUserID)),
		zap.String("request_id", c.GetString("request_id")),
		zap.Duration("latency", time.Since(start)),
	}, extra...)

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request_error", fields...)
	case status >= http.StatusBadRequest:
		logger.Warn("request", fields...)
	default:
		logger.Info("request", fields...)
	}
}

func observe(m *metrics.Metrics, c *gin.Context, start time.Time) {
	if m == nil {
		return
	}
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(c.Request.Method, route, fmt.Sprint(c.Writer.Status())).Inc()
	m.HTTPLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
}
