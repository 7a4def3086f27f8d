package persist

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

type NotificationType string

const (
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeReply   NotificationType = "reply"
	NotificationTypeThumb   NotificationType = "thumb"
	NotificationTypeFavour  NotificationType = "favour"
	NotificationTypeSystem  NotificationType = "system"
)

func (n NotificationType) String() string {
	return string(n)
}

func (n NotificationType) IsValid() bool {
	switch n {
	case NotificationTypeComment, NotificationTypeReply, NotificationTypeThumb, NotificationTypeFavour, NotificationTypeSystem:
		return true
	default:
		return false
	}
}

// ParseNotificationType parses a case-insensitive notification type
func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid notification type: %s", s)
	}
	return t, nil
}

// Scan implements the database/sql Scanner interface for the NotificationType type
func (n *NotificationType) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*n = NotificationType(v)
	case []byte:
		*n = NotificationType(v)
	case nil:
		*n = ""
	default:
		return fmt.Errorf("cannot scan %T into NotificationType", src)
	}
	return nil
}

// Value implements the database/sql driver Valuer interface for the NotificationType type
func (n NotificationType) Value() (driver.Value, error) {
	return n.String(), nil
}

type NotificationStatus int

const (
	NotificationStatusUnread NotificationStatus = 0
	NotificationStatusRead   NotificationStatus = 1
)

func (s NotificationStatus) IsValid() bool {
	return s == NotificationStatusUnread || s == NotificationStatusRead
}

func (s NotificationStatus) String() string {
	switch s {
	case NotificationStatusUnread:
		return "unread"
	case NotificationStatusRead:
		return "read"
	default:
		return fmt.Sprintf("NotificationStatus(%d)", int(s))
	}
}

// Scan implements the database/sql Scanner interface for the NotificationStatus type
func (s *NotificationStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*s = NotificationStatus(v)
	case int32:
		*s = NotificationStatus(v)
	case int16:
		*s = NotificationStatus(v)
	case nil:
		*s = NotificationStatusUnread
	default:
		return fmt.Errorf("cannot scan %T into NotificationStatus", src)
	}
	return nil
}

// Value implements the database/sql driver Valuer interface for the NotificationStatus type
func (s NotificationStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

// MaxNotificationContentLength is the maximum number of characters stored for a notification
const MaxNotificationContentLength = 1024

type Notification struct {
	ID         DBID               `json:"id"`
	Type       NotificationType   `json:"type"`
	Content    string             `json:"content"`
	ReceiverID DBID               `json:"receiverId"`
	SenderID   DBID               `json:"senderId"`
	PostID     DBID               `json:"postId"`
	CommentID  DBID               `json:"commentId,omitempty"`
	Status     NotificationStatus `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	IsDeleted  int                `json:"-"`
}

// NotificationFilter narrows a receiver's notifications. Nil fields match everything.
type NotificationFilter struct {
	Type   *NotificationType
	Status *NotificationStatus
}

type NotificationRepository interface {
	Create(ctx context.Context, notification Notification) (DBID, error)
	// MarkRead marks the receiver's notifications with the given ids as read and returns the
	// number of rows matched. Ids owned by other receivers are ignored.
	MarkRead(ctx context.Context, receiverID DBID, ids []DBID) (int64, error)
	CountUnread(ctx context.Context, receiverID DBID) (int, error)
	List(ctx context.Context, receiverID DBID, filter NotificationFilter, limit, offset int) ([]Notification, error)
	Count(ctx context.Context, receiverID DBID, filter NotificationFilter) (int, error)
}

type ErrSelfNotification struct {
	UserID DBID
}

func (e ErrSelfNotification) Error() string {
	return fmt.Sprintf("notification receiver and sender are the same user: %s", e.UserID)
}
