package util

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/gdblog/go-blog/env"
)

// ErrorResponse represents a json response for an error during endpoint execution
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a json response for a successful call that returns no data
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrResponse aborts the request and writes err as the body
func ErrResponse(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: err.Error()})
}

// HealthCheckHandler returns 200 as long as the process can serve requests
func HealthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"alive":   true,
			"env":     env.GetString("ENV"),
			"version": env.GetString("VERSION"),
		})
	}
}

// VarNotSetTo panics if an environment variable is not set or set to `emptyVal`
func VarNotSetTo(envVar, emptyVal string) {
	if env.GetString(envVar) == emptyVal {
		panic(fmt.Sprintf("%s must be set", envVar))
	}
}

// FirstNonEmptyString returns the first string that isn't blank, or "" if there isn't one
func FirstNonEmptyString(strs ...string) string {
	s, _ := lo.Find(strs, func(s string) bool {
		return strings.TrimSpace(s) != ""
	})
	return s
}

// TruncateRunes cuts s down to at most n characters without splitting a multi-byte character
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
