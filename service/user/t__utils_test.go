package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gdblog/go-blog/service/persist"
)

type fakeUserRepo struct {
	users       map[persist.DBID]persist.User
	batchCalls  int
	singleCalls int
	lastBatch   []persist.DBID
}

func newFakeUserRepo(users ...persist.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[persist.DBID]persist.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID persist.DBID) (persist.User, error) {
	f.singleCalls++
	u, ok := f.users[userID]
	if !ok {
		return persist.User{}, persist.ErrUserNotFound{UserID: userID}
	}
	return u, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, userIDs []persist.DBID) ([]persist.User, error) {
	f.batchCalls++
	f.lastBatch = userIDs
	result := make([]persist.User, 0, len(userIDs))
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func setupTest(t *testing.T) *assert.Assertions {
	return assert.New(t)
}
