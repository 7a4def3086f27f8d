package publicapi

import (
	"errors"
	"fmt"

	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/validate"
)

// ErrNotAuthorized is returned when the caller may not perform an action
type ErrNotAuthorized struct {
	UserID persist.DBID
	Action string
}

func (e ErrNotAuthorized) Error() string {
	if !e.UserID.IsValid() {
		return fmt.Sprintf("not authorized to %s: not logged in", e.Action)
	}
	return fmt.Sprintf("user %s is not authorized to %s", e.UserID, e.Action)
}

func IsValidationError(err error) bool {
	return errors.As(err, &validate.ErrInvalidInput{})
}

func IsNotFoundError(err error) bool {
	return errors.As(err, &persist.ErrCommentNotFound{}) ||
		errors.As(err, &persist.ErrPostNotFound{}) ||
		errors.As(err, &persist.ErrUserNotFound{})
}

func IsAuthorizationError(err error) bool {
	return errors.As(err, &ErrNotAuthorized{})
}

func IsPersistenceError(err error) bool {
	return errors.As(err, &persist.ErrPersistence{})
}
