package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oszuidwest/zwfm-voice/internal/api/responses"
	"github.com/oszuidwest/zwfm-voice/internal/apperrors"
	"github.com/oszuidwest/zwfm-voice/internal/metrics"
	"github.com/oszuidwest/zwfm-voice/internal/requestid"
	"github.com/oszuidwest/zwfm-voice/pkg/logger"
)

// requestIDMiddleware accepts a caller-supplied X-Request-ID or mints one,
// and echoes it on the response.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestid.Sanitize(c.GetHeader(requestid.Header))
		requestid.Set(c, id)
		c.Header(requestid.Header, id)
		c.Next()
	}
}

// recoveryMiddleware turns a panic into the standard error shape so no raw
// fault reaches the client.
func recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.L().Error("Panic recovered",
					zap.String("request_id", requestid.FromGin(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				responses.AbortInternalServerError(c, apperrors.MsgInternal)
			}
		}()
		c.Next()
	}
}

// accessLogMiddleware replaces gin's default logger with one zap line per request.
func accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.L().Info("HTTP request",
			zap.String("request_id", requestid.FromGin(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware records request counts and latency per route template.
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
