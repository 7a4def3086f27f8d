package publicapi

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gdblog/go-blog/event"
	"github.com/gdblog/go-blog/service/auth"
	"github.com/gdblog/go-blog/service/notifications"
	"github.com/gdblog/go-blog/service/persist"
)

var (
	u1 = persist.User{ID: 1, UserAccount: "u1", UserName: "Una", UserRole: persist.RoleUser}
	u2 = persist.User{ID: 2, UserAccount: "u2", UserName: "Dos", UserRole: persist.RoleUser}
	u3 = persist.User{ID: 3, UserAccount: "u3", UserName: "Tres", UserRole: persist.RoleUser}

	admin = persist.User{ID: 9, UserAccount: "root", UserRole: persist.RoleAdmin}

	testPost = persist.Post{ID: 10, Title: "Hello World", UserID: u1.ID}
)

var errNegativeOffset = errors.New("OFFSET must not be negative")

func identityOf(u persist.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.UserRole}
}

type memComments struct {
	rows   map[persist.DBID]persist.Comment
	nextID persist.DBID
	clock  time.Time
}

func (m *memComments) Create(ctx context.Context, c persist.Comment) (persist.DBID, error) {
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	c.ID = m.nextID
	c.CreatedAt = m.clock
	m.rows[c.ID] = c
	return c.ID, nil
}

func (m *memComments) GetByID(ctx context.Context, id persist.DBID) (persist.Comment, error) {
	c, ok := m.rows[id]
	if !ok || c.IsDeleted != 0 {
		return persist.Comment{}, persist.ErrCommentNotFound{ID: id}
	}
	return c, nil
}

func (m *memComments) filter(keep func(persist.Comment) bool) []persist.Comment {
	result := make([]persist.Comment, 0)
	for _, c := range m.rows {
		if c.IsDeleted == 0 && keep(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *memComments) GetRootsByPostID(ctx context.Context, postID persist.DBID, limit, offset int) ([]persist.Comment, error) {
	if offset < 0 {
		return nil, errNegativeOffset
	}
	roots := m.filter(func(c persist.Comment) bool { return c.PostID == postID && c.IsRoot() })
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID > roots[j].ID })
	if offset >= len(roots) {
		return []persist.Comment{}, nil
	}
	if offset+limit < len(roots) {
		roots = roots[:offset+limit]
	}
	return roots[offset:], nil
}

func (m *memComments) CountRootsByPostID(ctx context.Context, postID persist.DBID) (int, error) {
	return len(m.filter(func(c persist.Comment) bool { return c.PostID == postID && c.IsRoot() })), nil
}

func (m *memComments) GetByParentIDs(ctx context.Context, postID persist.DBID, parentIDs []persist.DBID, limit int) ([]persist.Comment, error) {
	parents := map[persist.DBID]bool{}
	for _, id := range parentIDs {
		parents[id] = true
	}
	children := m.filter(func(c persist.Comment) bool { return c.PostID == postID && parents[c.ParentID] })
	if len(children) > limit {
		children = children[:limit]
	}
	return children, nil
}

func (m *memComments) Delete(ctx context.Context, id persist.DBID) error {
	c, ok := m.rows[id]
	if !ok || c.IsDeleted != 0 {
		return persist.ErrCommentNotFound{ID: id}
	}
	c.IsDeleted = 1
	m.rows[id] = c
	return nil
}

type memNotifications struct {
	rows   []persist.Notification
	broken bool
}

func (m *memNotifications) Create(ctx context.Context, n persist.Notification) (persist.DBID, error) {
	if m.broken {
		return 0, persist.ErrPersistence{Op: "create notification", Err: errors.New("connection refused")}
	}
	n.ID = persist.DBID(len(m.rows) + 1)
	m.rows = append(m.rows, n)
	return n.ID, nil
}

func (m *memNotifications) MarkRead(ctx context.Context, receiverID persist.DBID, ids []persist.DBID) (int64, error) {
	wanted := map[persist.DBID]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var changed int64
	for i, n := range m.rows {
		if n.ReceiverID == receiverID && wanted[n.ID] && n.Status != persist.NotificationStatusRead {
			m.rows[i].Status = persist.NotificationStatusRead
			changed++
		}
	}
	return changed, nil
}

func (m *memNotifications) CountUnread(ctx context.Context, receiverID persist.DBID) (int, error) {
	status := persist.NotificationStatusUnread
	return m.Count(ctx, receiverID, persist.NotificationFilter{Status: &status})
}

func (m *memNotifications) matching(receiverID persist.DBID, filter persist.NotificationFilter) []persist.Notification {
	result := make([]persist.Notification, 0)
	for i := len(m.rows) - 1; i >= 0; i-- {
		n := m.rows[i]
		if n.ReceiverID != receiverID {
			continue
		}
		if filter.Type != nil && n.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && n.Status != *filter.Status {
			continue
		}
		result = append(result, n)
	}
	return result
}

func (m *memNotifications) List(ctx context.Context, receiverID persist.DBID, filter persist.NotificationFilter, limit, offset int) ([]persist.Notification, error) {
	if offset < 0 {
		return nil, errNegativeOffset
	}
	rows := m.matching(receiverID, filter)
	if offset >= len(rows) {
		return []persist.Notification{}, nil
	}
	if offset+limit < len(rows) {
		rows = rows[:offset+limit]
	}
	return rows[offset:], nil
}

func (m *memNotifications) Count(ctx context.Context, receiverID persist.DBID, filter persist.NotificationFilter) (int, error) {
	return len(m.matching(receiverID, filter)), nil
}

type memUsers struct {
	rows map[persist.DBID]persist.User
}

func (m *memUsers) GetByID(ctx context.Context, id persist.DBID) (persist.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return persist.User{}, persist.ErrUserNotFound{UserID: id}
	}
	return u, nil
}

func (m *memUsers) GetByIDs(ctx context.Context, ids []persist.DBID) ([]persist.User, error) {
	result := make([]persist.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.rows[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

type memPosts struct {
	rows map[persist.DBID]persist.Post
}

func (m *memPosts) GetByID(ctx context.Context, id persist.DBID) (persist.Post, error) {
	p, ok := m.rows[id]
	if !ok {
		return persist.Post{}, persist.ErrPostNotFound{ID: id}
	}
	return p, nil
}

type fixture struct {
	api           *PublicAPI
	comments      *memComments
	notifications *memNotifications
}

func setupTest(t *testing.T) (*assert.Assertions, *fixture) {
	f := &fixture{
		comments:      &memComments{rows: map[persist.DBID]persist.Comment{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		notifications: &memNotifications{},
	}

	users := &memUsers{rows: map[persist.DBID]persist.User{u1.ID: u1, u2.ID: u2, u3.ID: u3, admin.ID: admin}}
	posts := &memPosts{rows: map[persist.DBID]persist.Post{testPost.ID: testPost}}

	stores := Stores{
		Comments:      f.comments,
		Notifications: f.notifications,
		Users:         users,
		Posts:         posts,
	}

	sender := event.NewSender(notifications.NewFanout(posts, f.comments, f.notifications))
	f.api = New(stores, sender)

	return assert.New(t), f
}
