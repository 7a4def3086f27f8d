package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/gdblog/go-blog/service/persist"
)

const notificationColumns = `id, type, content, receiver_id, sender_id, COALESCE(post_id, 0), comment_id, status, created_at, updated_at, is_deleted`

const notificationFilter = `receiver_id = $1 AND is_deleted = 0 AND ($2::varchar IS NULL OR type = $2) AND ($3::smallint IS NULL OR status = $3)`

// NotificationRepository reads and writes notifications through a pgx pool
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (n *NotificationRepository) Create(ctx context.Context, notification persist.Notification) (persist.DBID, error) {
	if notification.ReceiverID == notification.SenderID {
		return 0, persist.ErrSelfNotification{UserID: notification.SenderID}
	}

	var id persist.DBID
	err := n.pool.QueryRow(ctx,
		`INSERT INTO notifications (type, content, receiver_id, sender_id, post_id, comment_id, status) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;`,
		notification.Type.String(),
		notification.Content,
		int64(notification.ReceiverID),
		int64(notification.SenderID),
		notification.PostID,
		notification.CommentID,
		int16(notification.Status),
	).Scan(&id)
	if err != nil {
		return 0, wrapErr("create notification", err)
	}
	return id, nil
}

// MarkRead flips the receiver's unread notifications among ids to read. Rows that are already
// read are left untouched so repeated calls don't change state.
func (n *NotificationRepository) MarkRead(ctx context.Context, receiverID persist.DBID, ids []persist.DBID) (int64, error) {
	tag, err := n.pool.Exec(ctx,
		`UPDATE notifications SET status = 1, updated_at = NOW() WHERE receiver_id = $1 AND id = ANY($2) AND is_deleted = 0 AND status <> 1;`,
		int64(receiverID),
		persist.DBIDList(ids).Int64s(),
	)
	if err != nil {
		return 0, wrapErr("mark notifications read", err)
	}
	return tag.RowsAffected(), nil
}

func (n *NotificationRepository) CountUnread(ctx context.Context, receiverID persist.DBID) (int, error) {
	var count int
	err := n.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE receiver_id = $1 AND status = 0 AND is_deleted = 0;`, int64(receiverID)).Scan(&count)
	if err != nil {
		return 0, wrapErr("count unread notifications", err)
	}
	return count, nil
}

func (n *NotificationRepository) List(ctx context.Context, receiverID persist.DBID, filter persist.NotificationFilter, limit, offset int) ([]persist.Notification, error) {
	typeParam, statusParam := filterParams(filter)

	rows, err := n.pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE `+notificationFilter+` ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5;`,
		int64(receiverID), typeParam, statusParam, limit, offset,
	)
	if err != nil {
		return nil, wrapErr("list notifications", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

func (n *NotificationRepository) Count(ctx context.Context, receiverID persist.DBID, filter persist.NotificationFilter) (int, error) {
	typeParam, statusParam := filterParams(filter)

	var count int
	err := n.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE `+notificationFilter+`;`, int64(receiverID), typeParam, statusParam).Scan(&count)
	if err != nil {
		return 0, wrapErr("count notifications", err)
	}
	return count, nil
}

func filterParams(filter persist.NotificationFilter) (*string, *int16) {
	var typeParam *string
	var statusParam *int16

	if filter.Type != nil {
		t := filter.Type.String()
		typeParam = &t
	}

	if filter.Status != nil {
		s := int16(*filter.Status)
		statusParam = &s
	}

	return typeParam, statusParam
}

func scanNotifications(rows pgx.Rows) ([]persist.Notification, error) {
	result := make([]persist.Notification, 0)
	for rows.Next() {
		var notif persist.Notification
		err := rows.Scan(&notif.ID, &notif.Type, &notif.Content, &notif.ReceiverID, &notif.SenderID, &notif.PostID, &notif.CommentID, &notif.Status, &notif.CreatedAt, &notif.UpdatedAt, &notif.IsDeleted)
		if err != nil {
			return nil, wrapErr("scan notification", err)
		}
		result = append(result, notif)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapErr("scan notification", err)
	}

	return result, nil
}
