package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gdblog/go-blog/service/persist"
)

type PostRepository struct {
	db          *sql.DB
	getByIDStmt *sql.Stmt
}

func NewPostRepository(db *sql.DB) *PostRepository {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	getByIDStmt, err := db.PrepareContext(ctx, `SELECT id, COALESCE(title, ''), user_id FROM posts WHERE id = $1 AND is_deleted = 0;`)
	checkNoErr(err)

	return &PostRepository{db: db, getByIDStmt: getByIDStmt}
}

func (p *PostRepository) GetByID(pCtx context.Context, pID persist.DBID) (persist.Post, error) {
	var post persist.Post
	err := p.getByIDStmt.QueryRowContext(pCtx, pID).Scan(&post.ID, &post.Title, &post.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persist.Post{}, persist.ErrPostNotFound{ID: pID}
		}
		return persist.Post{}, wrapErr("get post", err)
	}
	return post, nil
}
