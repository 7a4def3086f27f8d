package persist

import (
	"context"
	"fmt"
)

// Post holds the fields of a post that comments and notifications depend on
type Post struct {
	ID     DBID   `json:"id"`
	Title  string `json:"title"`
	UserID DBID   `json:"userId"`
}

type PostRepository interface {
	GetByID(ctx context.Context, postID DBID) (Post, error)
}

type ErrPostNotFound struct {
	ID DBID
}

func (e ErrPostNotFound) Error() string {
	return fmt.Sprintf("post not found by id: %s", e.ID)
}
