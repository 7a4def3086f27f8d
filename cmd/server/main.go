package main

import (
	"fmt"
	"net/http"

	"google.golang.org/appengine"

	"github.com/gdblog/go-blog/env"
	"github.com/gdblog/go-blog/server"
	"github.com/gdblog/go-blog/service/logger"
	sentryutil "github.com/gdblog/go-blog/service/sentry"
)

func main() {
	defer sentryutil.RecoverAndRaise(nil)

	server.Init()
	if appengine.IsAppEngine() {
		logger.For(nil).Info("Running in App Engine Mode")
		appengine.Main()
	} else {
		logger.For(nil).Info("Running in Default Mode")
		if err := http.ListenAndServe(fmt.Sprintf(":%d", env.GetInt("PORT")), nil); err != nil {
			logger.For(nil).Fatalf("server stopped: %s", err)
		}
	}
}
