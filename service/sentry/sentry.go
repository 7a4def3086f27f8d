package sentryutil

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/gdblog/go-blog/service/logger"
)

// SentryHubFromContext returns the hub attached to ctx, or nil if there isn't one.
func SentryHubFromContext(ctx context.Context) *sentry.Hub {
	if ctx == nil {
		return nil
	}

	if gc, ok := ctx.(*gin.Context); ok {
		if hub := sentrygin.GetHubFromContext(gc); hub != nil {
			return hub
		}
		if gc.Request == nil {
			return nil
		}
		ctx = gc.Request.Context()
	}

	return sentry.GetHubFromContext(ctx)
}

// NewSentryHubContext returns a copy of ctx with a cloned hub, so that scope changes made by the
// caller don't leak into the request's hub.
func NewSentryHubContext(ctx context.Context) context.Context {
	hub := SentryHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return sentry.SetHubOnContext(ctx, hub.Clone())
}

func ReportError(ctx context.Context, err error, scopeFuncs ...func(scope *sentry.Scope)) {
	hub := SentryHubFromContext(ctx)
	if hub == nil {
		logger.For(ctx).Warnf("could not report error to sentry because hub is nil: %s", err)
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		for _, f := range scopeFuncs {
			f(scope)
		}
		hub.CaptureException(err)
	})
}

// RecoverAndRaise reports a panic to sentry and then re-panics. Must be deferred directly.
func RecoverAndRaise(ctx context.Context) {
	if err := recover(); err != nil {
		hub := sentry.CurrentHub()
		if h := SentryHubFromContext(ctx); h != nil {
			hub = h
		}
		hub.Recover(err)
		hub.Flush(2 * time.Second)
		panic(err)
	}
}
