package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/service/user"
	"github.com/gdblog/go-blog/util"
	"github.com/gdblog/go-blog/validate"
)

// UnknownPostTitle stands in for a post without a title
const UnknownPostTitle = "your post"

// Fanout turns newly created comments into notifications for the people they concern
type Fanout struct {
	posts         persist.PostRepository
	comments      persist.CommentRepository
	notifications persist.NotificationRepository
}

func NewFanout(posts persist.PostRepository, comments persist.CommentRepository, notifications persist.NotificationRepository) *Fanout {
	return &Fanout{posts: posts, comments: comments, notifications: notifications}
}

// OnCommentCreated notifies the post author about a root comment, or the parent comment's author
// about a reply. Nobody is notified about their own comment. When the post or parent can't be found
// nothing is written and nil is returned.
func (f *Fanout) OnCommentCreated(ctx context.Context, comment persist.Comment, sender persist.UserSummary) error {
	if !sender.ID.IsValid() || !comment.PostID.IsValid() {
		return nil
	}

	ctx = logger.NewContextWithFields(ctx, logrus.Fields{
		"commentId": comment.ID,
		"postId":    comment.PostID,
		"senderId":  sender.ID,
	})

	if comment.IsRoot() {
		return f.notifyPostAuthor(ctx, comment, sender)
	}
	return f.notifyParentAuthor(ctx, comment, sender)
}

func (f *Fanout) notifyPostAuthor(ctx context.Context, comment persist.Comment, sender persist.UserSummary) error {
	post, err := f.posts.GetByID(ctx, comment.PostID)
	if err != nil {
		if _, ok := err.(persist.ErrPostNotFound); ok {
			logger.For(ctx).Warn("notification skipped, post not found")
			return nil
		}
		return err
	}

	if !post.UserID.IsValid() {
		logger.For(ctx).Warn("notification skipped, post has no author")
		return nil
	}

	// Don't notify the user on self events
	if post.UserID == sender.ID {
		return nil
	}

	content := fmt.Sprintf("%s commented on your post: %s", user.DisplayName(&sender), postTitle(post))

	return f.save(ctx, persist.NotificationTypeComment, content, post.UserID, sender.ID, comment)
}

func (f *Fanout) notifyParentAuthor(ctx context.Context, comment persist.Comment, sender persist.UserSummary) error {
	parent, err := f.comments.GetByID(ctx, comment.ParentID)
	if err != nil {
		if _, ok := err.(persist.ErrCommentNotFound); ok {
			logger.For(ctx).WithField("parentId", comment.ParentID).Warn("notification skipped, parent comment not found")
			return nil
		}
		return err
	}

	if !parent.UserID.IsValid() {
		logger.For(ctx).WithField("parentId", comment.ParentID).Warn("notification skipped, parent comment has no author")
		return nil
	}

	// Don't notify the user on self events
	if parent.UserID == sender.ID {
		return nil
	}

	content := fmt.Sprintf("%s replied to your comment", user.DisplayName(&sender))

	return f.save(ctx, persist.NotificationTypeReply, content, parent.UserID, sender.ID, comment)
}

func (f *Fanout) save(ctx context.Context, notifType persist.NotificationType, content string, receiverID, senderID persist.DBID, comment persist.Comment) error {
	content = util.TruncateRunes(strings.TrimSpace(content), persist.MaxNotificationContentLength)
	if content == "" {
		return nil
	}

	id, err := f.notifications.Create(ctx, persist.Notification{
		Type:       notifType,
		Content:    content,
		ReceiverID: receiverID,
		SenderID:   senderID,
		PostID:     comment.PostID,
		CommentID:  comment.ID,
		Status:     persist.NotificationStatusUnread,
	})
	if err != nil {
		return err
	}

	logger.For(ctx).WithFields(logrus.Fields{
		"notificationId": id,
		"receiverId":     receiverID,
		"type":           notifType,
	}).Debug("notification created")

	return nil
}

func postTitle(post persist.Post) string {
	title := strings.TrimSpace(post.Title)
	if validate.IsHTMLLike(title) {
		title = validate.SanitizeText(title)
	}
	if title == "" {
		return UnknownPostTitle
	}
	return title
}
