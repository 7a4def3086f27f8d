package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

type otherKey struct{}

func setupTest(t *testing.T) *assert.Assertions {
	gin.SetMode(gin.TestMode)
	return assert.New(t)
}

func newGinContext() *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c
}

func TestFor(t *testing.T) {
	a := setupTest(t)

	t.Run("nil context uses the default logger", func(t *testing.T) {
		a.Empty(For(nil).Data)
	})

	t.Run("fields are found on a plain context", func(t *testing.T) {
		ctx := NewContextWithFields(context.Background(), logrus.Fields{"userId": 1})
		a.Equal(1, For(ctx).Data["userId"])
	})

	t.Run("fields are found on a gin context", func(t *testing.T) {
		gc := newGinContext()
		NewContextWithFields(gc, logrus.Fields{"requestId": "abc"})
		a.Equal("abc", For(gc).Data["requestId"])
	})

	t.Run("fields are found through contexts wrapping a gin context", func(t *testing.T) {
		gc := newGinContext()
		NewContextWithFields(gc, logrus.Fields{"requestId": "abc", "userId": 7})

		wrapped := context.WithValue(gc, otherKey{}, true)
		_, gCtx := errgroup.WithContext(wrapped)

		entry := For(gCtx)
		a.Equal("abc", entry.Data["requestId"])
		a.Equal(7, entry.Data["userId"])
	})

	t.Run("fields added on a wrapped context keep the request fields", func(t *testing.T) {
		gc := newGinContext()
		NewContextWithFields(gc, logrus.Fields{"requestId": "abc"})

		_, gCtx := errgroup.WithContext(gc)
		ctx := NewContextWithFields(gCtx, logrus.Fields{"receiverId": 3})

		entry := For(ctx)
		a.Equal("abc", entry.Data["requestId"])
		a.Equal(3, entry.Data["receiverId"])
	})
}
