package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/gdblog/go-blog/service/persist"
)

const commentColumns = `id, content, post_id, user_id, parent_id, created_at, updated_at, is_deleted`

// CommentRepository represents a comment repository in the postgres database
type CommentRepository struct {
	db                 *sql.DB
	createStmt         *sql.Stmt
	getByIDStmt        *sql.Stmt
	getRootsStmt       *sql.Stmt
	countRootsStmt     *sql.Stmt
	getByParentIDsStmt *sql.Stmt
	deleteStmt         *sql.Stmt
}

// NewCommentRepository creates a new postgres repository for interacting with comments
func NewCommentRepository(db *sql.DB) *CommentRepository {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	createStmt, err := db.PrepareContext(ctx, `INSERT INTO comments (content, post_id, user_id, parent_id) VALUES ($1, $2, $3, $4) RETURNING id;`)
	checkNoErr(err)

	getByIDStmt, err := db.PrepareContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1 AND is_deleted = 0;`)
	checkNoErr(err)

	getRootsStmt, err := db.PrepareContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id = $1 AND parent_id IS NULL AND is_deleted = 0 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3;`)
	checkNoErr(err)

	countRootsStmt, err := db.PrepareContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = $1 AND parent_id IS NULL AND is_deleted = 0;`)
	checkNoErr(err)

	getByParentIDsStmt, err := db.PrepareContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id = $1 AND parent_id = ANY($2) AND is_deleted = 0 ORDER BY created_at ASC, id ASC LIMIT $3;`)
	checkNoErr(err)

	deleteStmt, err := db.PrepareContext(ctx, `UPDATE comments SET is_deleted = 1, updated_at = NOW() WHERE id = $1 AND is_deleted = 0;`)
	checkNoErr(err)

	return &CommentRepository{
		db:                 db,
		createStmt:         createStmt,
		getByIDStmt:        getByIDStmt,
		getRootsStmt:       getRootsStmt,
		countRootsStmt:     countRootsStmt,
		getByParentIDsStmt: getByParentIDsStmt,
		deleteStmt:         deleteStmt,
	}
}

// Create inserts a comment and returns its generated id
func (c *CommentRepository) Create(pCtx context.Context, pComment persist.Comment) (persist.DBID, error) {
	var id persist.DBID
	err := c.createStmt.QueryRowContext(pCtx, pComment.Content, pComment.PostID, pComment.UserID, pComment.ParentID).Scan(&id)
	if err != nil {
		return 0, wrapErr("create comment", err)
	}
	return id, nil
}

// GetByID returns a live comment
func (c *CommentRepository) GetByID(pCtx context.Context, pID persist.DBID) (persist.Comment, error) {
	comment, err := scanComment(c.getByIDStmt.QueryRowContext(pCtx, pID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persist.Comment{}, persist.ErrCommentNotFound{ID: pID}
		}
		return persist.Comment{}, wrapErr("get comment", err)
	}
	return comment, nil
}

// GetRootsByPostID returns a page of live root comments, newest first
func (c *CommentRepository) GetRootsByPostID(pCtx context.Context, pPostID persist.DBID, limit, offset int) ([]persist.Comment, error) {
	rows, err := c.getRootsStmt.QueryContext(pCtx, pPostID, limit, offset)
	if err != nil {
		return nil, wrapErr("get root comments", err)
	}
	return scanComments(rows, limit)
}

func (c *CommentRepository) CountRootsByPostID(pCtx context.Context, pPostID persist.DBID) (int, error) {
	var count int
	if err := c.countRootsStmt.QueryRowContext(pCtx, pPostID).Scan(&count); err != nil {
		return 0, wrapErr("count root comments", err)
	}
	return count, nil
}

// GetByParentIDs returns up to limit live comments of a post whose parent is one of parentIDs,
// oldest first
func (c *CommentRepository) GetByParentIDs(pCtx context.Context, pPostID persist.DBID, pParentIDs []persist.DBID, limit int) ([]persist.Comment, error) {
	if len(pParentIDs) == 0 || limit <= 0 {
		return []persist.Comment{}, nil
	}

	rows, err := c.getByParentIDsStmt.QueryContext(pCtx, pPostID, pq.Array(persist.DBIDList(pParentIDs).Int64s()), limit)
	if err != nil {
		return nil, wrapErr("get child comments", err)
	}
	return scanComments(rows, limit)
}

// Delete soft deletes a comment
func (c *CommentRepository) Delete(pCtx context.Context, pID persist.DBID) error {
	res, err := c.deleteStmt.ExecContext(pCtx, pID)
	if err != nil {
		return wrapErr("delete comment", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return wrapErr("delete comment", err)
	}
	if rows == 0 {
		return persist.ErrCommentNotFound{ID: pID}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(row rowScanner) (persist.Comment, error) {
	var comment persist.Comment
	err := row.Scan(&comment.ID, &comment.Content, &comment.PostID, &comment.UserID, &comment.ParentID, &comment.CreatedAt, &comment.UpdatedAt, &comment.IsDeleted)
	return comment, err
}

func scanComments(rows *sql.Rows, sizeHint int) ([]persist.Comment, error) {
	defer rows.Close()

	if sizeHint > 100 {
		sizeHint = 100
	}

	result := make([]persist.Comment, 0, sizeHint)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, wrapErr("scan comment", err)
		}
		result = append(result, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapErr("scan comment", err)
	}

	return result, nil
}
