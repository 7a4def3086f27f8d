package user

import (
	"context"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/util"
)

// UnknownDisplayName is shown in place of a user that can't be named
const UnknownDisplayName = "Someone"

// Resolver maps user ids to their public summaries
type Resolver struct {
	users persist.UserRepository
}

func NewResolver(users persist.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// ResolveMany looks up every valid id in one batched read. Ids with no live user are absent from
// the result.
func (r *Resolver) ResolveMany(ctx context.Context, userIDs []persist.DBID) (map[persist.DBID]persist.UserSummary, error) {
	wanted := make(map[persist.DBID]bool, len(userIDs))
	for _, id := range userIDs {
		if id.IsValid() {
			wanted[id] = true
		}
	}

	result := make(map[persist.DBID]persist.UserSummary, len(wanted))
	if len(wanted) == 0 {
		return result, nil
	}

	users, err := r.users.GetByIDs(ctx, maps.Keys(wanted))
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if wanted[u.ID] {
			result[u.ID] = u.Summary()
		}
	}

	return result, nil
}

// ResolveOne returns the summary for userID. The boolean is false when the user doesn't exist.
func (r *Resolver) ResolveOne(ctx context.Context, userID persist.DBID) (persist.UserSummary, bool, error) {
	if !userID.IsValid() {
		return persist.UserSummary{}, false, nil
	}

	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if _, ok := err.(persist.ErrUserNotFound); ok {
			return persist.UserSummary{}, false, nil
		}
		return persist.UserSummary{}, false, err
	}

	return u.Summary(), true, nil
}

// DisplayName picks the first non-blank of the user's name and account
func DisplayName(u *persist.UserSummary) string {
	if u == nil {
		return UnknownDisplayName
	}
	name := strings.TrimSpace(util.FirstNonEmptyString(u.UserName, u.UserAccount))
	if name == "" {
		return UnknownDisplayName
	}
	return name
}
