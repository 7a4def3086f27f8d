//go:build debug_tools
// +build debug_tools

// debugtools_enabled.go is only compiled when the `debug_tools` build tag is set.
// Anything that should be debug-only can be added here. Additionally, because the
// 'Enabled' bool is a const, code in other files that is conditional on Enabled
// will also be compiled out of builds.

package debugtools

import (
	"errors"

	"github.com/gdblog/go-blog/env"
	"github.com/gdblog/go-blog/service/persist"
)

const Enabled bool = true

func init() {
	// An additional safeguard against running debug tools in production
	if env.GetString("ENV") == "production" {
		panic(errors.New("debug tools may not be enabled in a production environment"))
	}
}

// UserIDFromHeader trusts the debug header as the caller's identity in debug environments
func UserIDFromHeader(header string) (persist.DBID, bool) {
	if header == "" || !IsDebugEnv() {
		return 0, false
	}
	return parseUserID(header)
}
