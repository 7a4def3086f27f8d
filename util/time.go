package util

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gdblog/go-blog/service/logger"
)

// Track logs how long an operation took at debug level. Call it deferred with time.Now().
func Track(ctx context.Context, op string, startTime time.Time) {
	logger.For(ctx).WithFields(logrus.Fields{
		"op":       op,
		"duration": time.Since(startTime),
	}).Debug("operation timed")
}
