// debugtools_common.go is always compiled and is not dependent on a build tag.
// It contains shared code used by both debugtools_enabled.go and debugtools_disabled.go.

package debugtools

import (
	"strconv"
	"strings"

	"github.com/gdblog/go-blog/env"
	"github.com/gdblog/go-blog/service/persist"
)

// DebugUserHeader names the header a debug build accepts as the caller's user id
const DebugUserHeader = "X-Debug-User-ID"

func IsDebugEnv() bool {
	currentEnv := env.GetString("ENV")
	return currentEnv == "local" || currentEnv == "development"
}

func parseUserID(header string) (persist.DBID, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(header), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return persist.DBID(id), true
}
