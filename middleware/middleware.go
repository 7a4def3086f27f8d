package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/gdblog/go-blog/env"
	"github.com/gdblog/go-blog/service/logger"
	sentryutil "github.com/gdblog/go-blog/service/sentry"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing the caller's if one was sent
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = ksuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		logger.NewContextWithFields(c, logrus.Fields{
			"requestId": requestID,
			"method":    c.Request.Method,
			"route":     c.FullPath(),
		})

		c.Next()
	}
}

// Logger writes one line per request once it's been served
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := logger.For(c).WithFields(logrus.Fields{
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		case env.GetString("ENV") != "local":
			entry.Info("request served")
		}
	}
}

// Sentry attaches a hub to each request and reports panics
func Sentry(reportGinErrors bool) gin.HandlerFunc {
	handler := sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 2 * time.Second})

	return func(c *gin.Context) {
		handler(c)

		if !reportGinErrors || c.IsAborted() {
			return
		}
		for _, err := range c.Errors {
			sentryutil.ReportError(c, err.Err)
		}
	}
}

// ErrLogger logs any errors attached to the gin context by handlers
func ErrLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			logger.For(c).Errorf("%s %s %s", c.Request.Method, c.Request.URL, err)
		}
	}
}

// HandleCORS sets CORS headers for allowed origins and answers preflight requests
func HandleCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestOrigin := c.Request.Header.Get("Origin")

		if IsOriginAllowed(requestOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", requestOrigin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", fmt.Sprintf("Content-Type, Authorization, %s", RequestIDHeader))
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// IsOriginAllowed checks origin against the comma separated ALLOWED_ORIGINS
func IsOriginAllowed(requestOrigin string) bool {
	if requestOrigin == "" {
		return false
	}

	for _, origin := range strings.Split(env.GetString("ALLOWED_ORIGINS"), ",") {
		if strings.TrimSpace(origin) == requestOrigin {
			return true
		}
	}

	return false
}
