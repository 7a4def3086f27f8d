package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gdblog/go-blog/service/persist"
)

var errStoreDown = errors.New("store is down")

type fakePostRepo struct {
	posts map[persist.DBID]persist.Post
}

func (f *fakePostRepo) GetByID(ctx context.Context, postID persist.DBID) (persist.Post, error) {
	p, ok := f.posts[postID]
	if !ok {
		return persist.Post{}, persist.ErrPostNotFound{ID: postID}
	}
	return p, nil
}

type fakeCommentRepo struct {
	comments map[persist.DBID]persist.Comment
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment persist.Comment) (persist.DBID, error) {
	comment.ID = persist.DBID(len(f.comments) + 1)
	f.comments[comment.ID] = comment
	return comment.ID, nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, commentID persist.DBID) (persist.Comment, error) {
	c, ok := f.comments[commentID]
	if !ok {
		return persist.Comment{}, persist.ErrCommentNotFound{ID: commentID}
	}
	return c, nil
}

func (f *fakeCommentRepo) GetRootsByPostID(ctx context.Context, postID persist.DBID, limit, offset int) ([]persist.Comment, error) {
	return nil, nil
}

func (f *fakeCommentRepo) CountRootsByPostID(ctx context.Context, postID persist.DBID) (int, error) {
	return 0, nil
}

func (f *fakeCommentRepo) GetByParentIDs(ctx context.Context, postID persist.DBID, parentIDs []persist.DBID, limit int) ([]persist.Comment, error) {
	return nil, nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, commentID persist.DBID) error {
	return nil
}

type fakeNotificationRepo struct {
	created []persist.Notification
	fail    bool
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification persist.Notification) (persist.DBID, error) {
	if f.fail {
		return 0, persist.ErrPersistence{Op: "create notification", Err: errStoreDown}
	}
	if notification.ReceiverID == notification.SenderID {
		return 0, persist.ErrSelfNotification{UserID: notification.SenderID}
	}
	f.created = append(f.created, notification)
	return persist.DBID(len(f.created)), nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, receiverID persist.DBID, ids []persist.DBID) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, receiverID persist.DBID) (int, error) {
	return 0, nil
}

func (f *fakeNotificationRepo) List(ctx context.Context, receiverID persist.DBID, filter persist.NotificationFilter, limit, offset int) ([]persist.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) Count(ctx context.Context, receiverID persist.DBID, filter persist.NotificationFilter) (int, error) {
	return 0, nil
}

// Users U1, U2 and U3. U1 wrote post 10; U2 wrote root comment 20 on it.
var (
	u1 = persist.UserSummary{ID: 1, UserAccount: "u1", UserName: "Una"}
	u2 = persist.UserSummary{ID: 2, UserAccount: "u2", UserName: "Dos"}
	u3 = persist.UserSummary{ID: 3, UserAccount: "u3"}
)

type fixture struct {
	posts         *fakePostRepo
	comments      *fakeCommentRepo
	notifications *fakeNotificationRepo
	fanout        *Fanout
}

func setupTest(t *testing.T) (*assert.Assertions, *fixture) {
	f := &fixture{
		posts: &fakePostRepo{posts: map[persist.DBID]persist.Post{
			10: {ID: 10, Title: "Hello World", UserID: u1.ID},
			11: {ID: 11, Title: "  ", UserID: u1.ID},
		}},
		comments: &fakeCommentRepo{comments: map[persist.DBID]persist.Comment{
			20: {ID: 20, PostID: 10, UserID: u2.ID, Content: "first"},
		}},
		notifications: &fakeNotificationRepo{},
	}
	f.fanout = NewFanout(f.posts, f.comments, f.notifications)
	return assert.New(t), f
}
