package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tradejournal/internal/logging"
)

// RequestLogger logs every request once it has been handled.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if query := c.Request.URL.RawQuery; query != "" {
			path = path + "?" + query
		}

		c.Next()

		logging.LogRequest(logger, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// WithRequestLogger stores the logger in the request context so that
// downstream packages can use logging.FromContext.
func WithRequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))
		c.Next()
	}
}
