package comment

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/validate"
)

// MaxContentLength is the longest a comment may be, in characters, after sanitization
const MaxContentLength = 1000

// Validator checks and normalizes comments before they're written
type Validator struct {
	comments  persist.CommentRepository
	validator *validator.Validate
}

func NewValidator(comments persist.CommentRepository, v *validator.Validate) *Validator {
	return &Validator{comments: comments, validator: v}
}

// Validate checks c and normalizes it in place. On create, content and postId are required. Any
// content present is trimmed and sanitized when it looks like HTML, and on create it must still
// be non-blank afterwards. A positive parentId must reference a live comment on the same post,
// and a missing postId is taken from that parent.
func (v *Validator) Validate(ctx context.Context, c *persist.Comment, isCreate bool) error {
	if isCreate {
		// Validate
		if err := validate.ValidateFields(v.validator, validate.ValidationMap{
			"content": validate.WithTag(c.Content, "not_blank"),
			"postId":  validate.WithTag(int64(c.PostID), "gt=0"),
		}); err != nil {
			return err
		}
	}

	if strings.TrimSpace(c.Content) != "" {
		c.Content = validate.CleanContent(c.Content)
		if isCreate {
			if err := validate.ValidateFields(v.validator, validate.ValidationMap{
				"content": validate.WithTag(c.Content, "not_blank"),
			}); err != nil {
				return err
			}
		}
		if utf8.RuneCountInString(c.Content) > MaxContentLength {
			return validate.NewErrInvalidInput("content", "comment content is too long")
		}
	}

	if c.ParentID.IsValid() {
		parent, err := v.comments.GetByID(ctx, c.ParentID)
		if err != nil {
			if _, ok := err.(persist.ErrCommentNotFound); ok {
				return validate.NewErrInvalidInput("parentId", "parent comment does not exist")
			}
			return err
		}

		if c.PostID.IsValid() && c.PostID != parent.PostID {
			return validate.NewErrInvalidInput("parentId", "parent does not belong to this post")
		}

		if !c.PostID.IsValid() {
			c.PostID = parent.PostID
		}
	}

	return nil
}
