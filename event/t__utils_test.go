package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gdblog/go-blog/service/notifications"
	"github.com/gdblog/go-blog/service/persist"
)

type stubPosts struct{}

func (stubPosts) GetByID(ctx context.Context, postID persist.DBID) (persist.Post, error) {
	if postID != 10 {
		return persist.Post{}, persist.ErrPostNotFound{ID: postID}
	}
	return persist.Post{ID: 10, Title: "Hello", UserID: 1}, nil
}

type stubComments struct {
	persist.CommentRepository
}

func (stubComments) GetByID(ctx context.Context, commentID persist.DBID) (persist.Comment, error) {
	return persist.Comment{}, persist.ErrCommentNotFound{ID: commentID}
}

type stubNotifications struct {
	persist.NotificationRepository
	created int
	fail    bool
}

func (s *stubNotifications) Create(ctx context.Context, notification persist.Notification) (persist.DBID, error) {
	if s.fail {
		return 0, persist.ErrPersistence{Op: "create notification", Err: errors.New("boom")}
	}
	s.created++
	return persist.DBID(s.created), nil
}

func setupTest(t *testing.T) (*assert.Assertions, *Sender, *stubNotifications) {
	notifs := &stubNotifications{}
	fanout := notifications.NewFanout(stubPosts{}, stubComments{}, notifs)
	return assert.New(t), NewSender(fanout), notifs
}
