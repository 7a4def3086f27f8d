package publicapi

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/gdblog/go-blog/event"
	"github.com/gdblog/go-blog/service/auth"
	"github.com/gdblog/go-blog/service/comment"
	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/service/user"
	"github.com/gdblog/go-blog/validate"
)

type CommentAPI struct {
	comments  persist.CommentRepository
	resolver  *user.Resolver
	assembler *comment.Assembler
	checker   *comment.Validator
	events    *event.Sender
	validator *validator.Validate
}

// ListCommentsInput selects a page of a post's threaded comments
type ListCommentsInput struct {
	PostID persist.DBID `json:"postId" form:"postId"`
	PageRequest
}

// CreateCommentInput is a new comment or reply. ParentID is zero for a root comment.
type CreateCommentInput struct {
	Content  string       `json:"content"`
	PostID   persist.DBID `json:"postId"`
	ParentID persist.DBID `json:"parentId"`
}

func (api CommentAPI) ListThreaded(ctx context.Context, input ListCommentsInput) (comment.ThreadedPage, error) {
	// Validate
	if err := validate.ValidateFields(api.validator, validate.ValidationMap{
		"postId": validate.WithTag(int64(input.PostID), "gt=0"),
	}); err != nil {
		return comment.ThreadedPage{}, err
	}

	page, err := input.PageRequest.normalize(api.validator)
	if err != nil {
		return comment.ThreadedPage{}, err
	}

	return api.assembler.ListThreaded(ctx, input.PostID, page.PageNumber, page.PageSize)
}

// CreateComment stores a comment written by identity and notifies whoever it concerns. The
// notification step runs after the comment is stored and can't fail the call.
func (api CommentAPI) CreateComment(ctx context.Context, identity auth.Identity, input CreateCommentInput) (persist.DBID, error) {
	if !identity.IsAuthenticated() || identity.IsBanned() {
		return 0, ErrNotAuthorized{UserID: identity.UserID, Action: "create comments"}
	}

	c := persist.Comment{
		Content:  input.Content,
		PostID:   input.PostID,
		ParentID: input.ParentID,
		UserID:   identity.UserID,
	}

	if err := api.checker.Validate(ctx, &c, true); err != nil {
		return 0, err
	}

	id, err := api.comments.Create(ctx, c)
	if err != nil {
		return 0, err
	}
	c.ID = id

	api.publishCommentCreated(ctx, c)

	return id, nil
}

func (api CommentAPI) publishCommentCreated(ctx context.Context, c persist.Comment) {
	if api.events == nil {
		return
	}

	author, ok, err := api.resolver.ResolveOne(ctx, c.UserID)
	if err != nil {
		logger.For(ctx).Errorf("failed to resolve author %s of comment %s: %s", c.UserID, c.ID, err)
	}
	if !ok {
		author = persist.UserSummary{ID: c.UserID}
	}

	api.events.Dispatch(ctx, event.CommentCreated(c, author))
}

func (api CommentAPI) GetCommentByID(ctx context.Context, commentID persist.DBID) (*persist.CommentView, error) {
	// Validate
	if err := validate.ValidateFields(api.validator, validate.ValidationMap{
		"commentId": validate.WithTag(int64(commentID), "gt=0"),
	}); err != nil {
		return nil, err
	}

	return api.assembler.GetView(ctx, commentID)
}

// DeleteComment soft deletes a comment. Only its author or an admin may delete it.
func (api CommentAPI) DeleteComment(ctx context.Context, identity auth.Identity, commentID persist.DBID) error {
	// Validate
	if err := validate.ValidateFields(api.validator, validate.ValidationMap{
		"commentId": validate.WithTag(int64(commentID), "gt=0"),
	}); err != nil {
		return err
	}

	existing, err := api.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if !identity.CanModify(existing.UserID) {
		return ErrNotAuthorized{UserID: identity.UserID, Action: "delete this comment"}
	}

	return api.comments.Delete(ctx, commentID)
}
