package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	migrate "github.com/gdblog/go-blog/db"
	"github.com/gdblog/go-blog/docker"
	"github.com/gdblog/go-blog/service/persist"
)

type fixture struct {
	repos  *Repositories
	db     *sql.DB
	author persist.DBID
	reader persist.DBID
	post   persist.DBID
}

func setupTest(t *testing.T) (*assert.Assertions, *fixture) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	r, err := docker.StartPostgres()
	if err != nil {
		t.Skipf("postgres container unavailable: %s", err)
	}
	t.Cleanup(func() { r.Close() })

	hostAndPort := strings.Split(r.GetHostPort("5432/tcp"), ":")
	port, err := strconv.Atoi(hostAndPort[1])
	require.NoError(t, err)

	opts := []ConnectionOption{
		WithHost(hostAndPort[0]),
		WithPort(port),
		WithUser("postgres"),
		WithPassword("postgres"),
		WithDBName("postgres"),
	}

	db := MustCreateClient(opts...)
	pgx := NewPgxClient(opts...)
	require.NoError(t, migrate.RunMigrations(db, "db/migrations/core"))

	repos := NewRepositories(db, pgx)
	t.Cleanup(repos.Close)

	f := &fixture{repos: repos, db: db}
	f.author = insertUser(t, db, "author", "Author", persist.RoleUser)
	f.reader = insertUser(t, db, "reader", "", persist.RoleUser)
	f.post = insertPost(t, db, "First post", f.author)

	return assert.New(t), f
}

func insertUser(t *testing.T, db *sql.DB, account, name string, role persist.Role) persist.DBID {
	var id persist.DBID
	err := db.QueryRow(`INSERT INTO users (user_account, user_password, user_name, user_role) VALUES ($1, 'x', NULLIF($2, ''), $3) RETURNING id`, account, name, string(role)).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertPost(t *testing.T, db *sql.DB, title string, userID persist.DBID) persist.DBID {
	var id persist.DBID
	err := db.QueryRow(`INSERT INTO posts (title, content, user_id) VALUES ($1, 'body', $2) RETURNING id`, title, userID).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestCommentRepository(t *testing.T) {
	a, f := setupTest(t)
	ctx := context.Background()
	comments := f.repos.CommentRepository

	rootID, err := comments.Create(ctx, persist.Comment{Content: "root", PostID: f.post, UserID: f.author})
	require.NoError(t, err)
	replyID, err := comments.Create(ctx, persist.Comment{Content: "reply", PostID: f.post, UserID: f.reader, ParentID: rootID})
	require.NoError(t, err)
	_, err = comments.Create(ctx, persist.Comment{Content: "nested", PostID: f.post, UserID: f.author, ParentID: replyID})
	require.NoError(t, err)

	t.Run("root comments have no parent", func(t *testing.T) {
		root, err := comments.GetByID(ctx, rootID)
		a.NoError(err)
		a.True(root.IsRoot())
		a.False(root.CreatedAt.IsZero())
	})

	t.Run("only roots are paged and counted", func(t *testing.T) {
		roots, err := comments.GetRootsByPostID(ctx, f.post, 10, 0)
		a.NoError(err)
		a.Len(roots, 1)
		a.Equal(rootID, roots[0].ID)

		count, err := comments.CountRootsByPostID(ctx, f.post)
		a.NoError(err)
		a.Equal(1, count)
	})

	t.Run("children are fetched by parent and limited", func(t *testing.T) {
		children, err := comments.GetByParentIDs(ctx, f.post, []persist.DBID{rootID, replyID}, 10)
		a.NoError(err)
		a.Len(children, 2)

		children, err = comments.GetByParentIDs(ctx, f.post, []persist.DBID{rootID, replyID}, 1)
		a.NoError(err)
		a.Len(children, 1)
	})

	t.Run("deleted comments are hidden", func(t *testing.T) {
		a.NoError(comments.Delete(ctx, replyID))

		_, err := comments.GetByID(ctx, replyID)
		a.IsType(persist.ErrCommentNotFound{}, err)

		a.IsType(persist.ErrCommentNotFound{}, comments.Delete(ctx, replyID))
	})
}

func TestUserAndPostRepositories(t *testing.T) {
	a, f := setupTest(t)
	ctx := context.Background()

	users, err := f.repos.UserRepository.GetByIDs(ctx, []persist.DBID{f.author, f.reader, 4040})
	a.NoError(err)
	a.Len(users, 2)

	_, err = f.repos.UserRepository.GetByID(ctx, 4040)
	a.IsType(persist.ErrUserNotFound{}, err)

	post, err := f.repos.PostRepository.GetByID(ctx, f.post)
	a.NoError(err)
	a.Equal("First post", post.Title)
	a.Equal(f.author, post.UserID)

	_, err = f.repos.PostRepository.GetByID(ctx, 4040)
	a.IsType(persist.ErrPostNotFound{}, err)
}

func TestNotificationRepository(t *testing.T) {
	a, f := setupTest(t)
	ctx := context.Background()
	notifications := f.repos.NotificationRepository

	create := func(typ persist.NotificationType) persist.DBID {
		id, err := notifications.Create(ctx, persist.Notification{
			Type:       typ,
			Content:    "someone did something",
			ReceiverID: f.author,
			SenderID:   f.reader,
			PostID:     f.post,
		})
		require.NoError(t, err)
		return id
	}

	commentNotif := create(persist.NotificationTypeComment)
	create(persist.NotificationTypeReply)

	t.Run("self notifications are refused", func(t *testing.T) {
		_, err := notifications.Create(ctx, persist.Notification{Type: persist.NotificationTypeComment, ReceiverID: f.author, SenderID: f.author})
		a.IsType(persist.ErrSelfNotification{}, err)
	})

	t.Run("filters by type and status", func(t *testing.T) {
		typ := persist.NotificationTypeComment
		listed, err := notifications.List(ctx, f.author, persist.NotificationFilter{Type: &typ}, 10, 0)
		a.NoError(err)
		a.Len(listed, 1)
		a.Equal(commentNotif, listed[0].ID)
		a.Equal(f.post, listed[0].PostID)
		a.False(listed[0].CommentID.IsValid())

		total, err := notifications.Count(ctx, f.author, persist.NotificationFilter{})
		a.NoError(err)
		a.Equal(2, total)
	})

	t.Run("mark read is idempotent and scoped to the receiver", func(t *testing.T) {
		n, err := notifications.MarkRead(ctx, f.reader, []persist.DBID{commentNotif})
		a.NoError(err)
		a.EqualValues(0, n)

		n, err = notifications.MarkRead(ctx, f.author, []persist.DBID{commentNotif})
		a.NoError(err)
		a.EqualValues(1, n)

		n, err = notifications.MarkRead(ctx, f.author, []persist.DBID{commentNotif})
		a.NoError(err)
		a.EqualValues(0, n)

		unread, err := notifications.CountUnread(ctx, f.author)
		a.NoError(err)
		a.Equal(1, unread)
	})
}
