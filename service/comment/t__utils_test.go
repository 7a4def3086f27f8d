package comment

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/validate"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeCommentRepo is an in-memory persist.CommentRepository
type fakeCommentRepo struct {
	comments map[persist.DBID]persist.Comment
	nextID   persist.DBID

	// extraChildren are returned alongside real children of a parent to simulate inconsistent reads
	extraChildren map[persist.DBID][]persist.Comment

	childQueries int
	rootOffsets  []int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{
		comments:      map[persist.DBID]persist.Comment{},
		extraChildren: map[persist.DBID][]persist.Comment{},
		nextID:        1,
	}
}

// add stores a comment created at baseTime plus offset seconds
func (f *fakeCommentRepo) add(postID, userID, parentID persist.DBID, offset int) persist.Comment {
	c := persist.Comment{
		ID:        f.nextID,
		Content:   "comment",
		PostID:    postID,
		UserID:    userID,
		ParentID:  parentID,
		CreatedAt: baseTime.Add(time.Duration(offset) * time.Second),
	}
	f.comments[c.ID] = c
	f.nextID++
	return c
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment persist.Comment) (persist.DBID, error) {
	comment.ID = f.nextID
	f.nextID++
	f.comments[comment.ID] = comment
	return comment.ID, nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, commentID persist.DBID) (persist.Comment, error) {
	c, ok := f.comments[commentID]
	if !ok || c.IsDeleted != 0 {
		return persist.Comment{}, persist.ErrCommentNotFound{ID: commentID}
	}
	return c, nil
}

func (f *fakeCommentRepo) roots(postID persist.DBID) []persist.Comment {
	result := make([]persist.Comment, 0)
	for _, c := range f.comments {
		if c.PostID == postID && c.IsRoot() && c.IsDeleted == 0 {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (f *fakeCommentRepo) GetRootsByPostID(ctx context.Context, postID persist.DBID, limit, offset int) ([]persist.Comment, error) {
	f.rootOffsets = append(f.rootOffsets, offset)
	if offset < 0 {
		return nil, fmt.Errorf("OFFSET must not be negative: %d", offset)
	}
	roots := f.roots(postID)
	if offset >= len(roots) {
		return []persist.Comment{}, nil
	}
	end := offset + limit
	if end > len(roots) {
		end = len(roots)
	}
	return roots[offset:end], nil
}

func (f *fakeCommentRepo) CountRootsByPostID(ctx context.Context, postID persist.DBID) (int, error) {
	return len(f.roots(postID)), nil
}

func (f *fakeCommentRepo) GetByParentIDs(ctx context.Context, postID persist.DBID, parentIDs []persist.DBID, limit int) ([]persist.Comment, error) {
	f.childQueries++

	parents := make(map[persist.DBID]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}

	result := make([]persist.Comment, 0)
	for _, c := range f.comments {
		if c.PostID == postID && parents[c.ParentID] && c.IsDeleted == 0 {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	for _, id := range parentIDs {
		result = append(result, f.extraChildren[id]...)
	}

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, commentID persist.DBID) error {
	c, ok := f.comments[commentID]
	if !ok || c.IsDeleted != 0 {
		return persist.ErrCommentNotFound{ID: commentID}
	}
	c.IsDeleted = 1
	f.comments[commentID] = c
	return nil
}

// fakeAuthors resolves any id listed in names
type fakeAuthors struct {
	names map[persist.DBID]string
	calls int
}

func (f *fakeAuthors) ResolveMany(ctx context.Context, userIDs []persist.DBID) (map[persist.DBID]persist.UserSummary, error) {
	f.calls++
	result := make(map[persist.DBID]persist.UserSummary)
	for _, id := range userIDs {
		if name, ok := f.names[id]; ok {
			result[id] = persist.UserSummary{ID: id, UserName: name}
		}
	}
	return result, nil
}

func setupTest(t *testing.T) *assert.Assertions {
	return assert.New(t)
}

func newTestAssembler(repo *fakeCommentRepo, opts ...AssemblerOption) (*Assembler, *fakeAuthors) {
	authors := &fakeAuthors{names: map[persist.DBID]string{1: "alice", 2: "bob"}}
	return NewAssembler(repo, authors, opts...), authors
}

func newTestValidator(repo *fakeCommentRepo) *Validator {
	return NewValidator(repo, validate.WithCustomValidators())
}

// walk visits every view under roots without recursion
func walk(roots []*persist.CommentView, visit func(parent, child *persist.CommentView)) int {
	count := 0
	stack := append([]*persist.CommentView{}, roots...)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		for _, child := range current.Children {
			visit(current, child)
			stack = append(stack, child)
		}
	}
	return count
}
