package auth

import (
	"context"

	"github.com/gdblog/go-blog/service/persist"
)

// RoleByUserID returns the user's current role. Roles in tokens can be stale, so a ban takes
// effect on the next request rather than when the token expires.
func RoleByUserID(ctx context.Context, users persist.UserRepository, userID persist.DBID) (persist.Role, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.UserRole == "" {
		return persist.RoleUser, nil
	}
	return user.UserRole, nil
}
