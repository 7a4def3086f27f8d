//go:build !debug_tools
// +build !debug_tools

// debugtools_disabled.go is compiled when the `debug_tools` build tag is not set and
// stubs out everything debugtools_enabled.go provides.

package debugtools

import "github.com/gdblog/go-blog/service/persist"

const Enabled bool = false

// UserIDFromHeader never accepts a debug identity outside of debug builds
func UserIDFromHeader(header string) (persist.DBID, bool) {
	return 0, false
}
