package persist

import (
	"context"
	"fmt"
	"time"
)

type Comment struct {
	ID        DBID      `json:"id"`
	Content   string    `json:"content"`
	PostID    DBID      `json:"postId"`
	UserID    DBID      `json:"userId"`
	ParentID  DBID      `json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsDeleted int       `json:"-"`
}

// IsRoot reports whether the comment is attached directly to its post
func (c Comment) IsRoot() bool {
	return !c.ParentID.IsValid()
}

// CommentView is a comment with its author and replies attached. Views are built per request.
type CommentView struct {
	ID        DBID           `json:"id"`
	Content   string         `json:"content"`
	PostID    DBID           `json:"postId"`
	UserID    DBID           `json:"userId"`
	ParentID  DBID           `json:"parentId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Author    *UserSummary   `json:"user"`
	Children  []*CommentView `json:"children"`
}

type CommentRepository interface {
	Create(ctx context.Context, comment Comment) (DBID, error)
	GetByID(ctx context.Context, commentID DBID) (Comment, error)
	// GetRootsByPostID returns live root comments for a post, newest first
	GetRootsByPostID(ctx context.Context, postID DBID, limit, offset int) ([]Comment, error)
	CountRootsByPostID(ctx context.Context, postID DBID) (int, error)
	// GetByParentIDs returns at most limit live comments of postID whose parent is in parentIDs,
	// oldest first
	GetByParentIDs(ctx context.Context, postID DBID, parentIDs []DBID, limit int) ([]Comment, error)
	Delete(ctx context.Context, commentID DBID) error
}

type ErrCommentNotFound struct {
	ID DBID
}

func (e ErrCommentNotFound) Error() string {
	return fmt.Sprintf("comment not found by id: %s", e.ID)
}
