package publicapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/gdblog/go-blog/event"
	"github.com/gdblog/go-blog/service/comment"
	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/service/persist/postgres"
	"github.com/gdblog/go-blog/service/user"
	"github.com/gdblog/go-blog/validate"
)

type PublicAPI struct {
	validator *validator.Validate

	Comment       *CommentAPI
	Notifications *NotificationsAPI
}

// Stores are the repositories the API reads and writes through
type Stores struct {
	Comments      persist.CommentRepository
	Notifications persist.NotificationRepository
	Users         persist.UserRepository
	Posts         persist.PostRepository
}

func StoresFrom(repos *postgres.Repositories) Stores {
	return Stores{
		Comments:      repos.CommentRepository,
		Notifications: repos.NotificationRepository,
		Users:         repos.UserRepository,
		Posts:         repos.PostRepository,
	}
}

func New(stores Stores, sender *event.Sender, assemblerOpts ...comment.AssemblerOption) *PublicAPI {
	validator := validate.WithCustomValidators()
	resolver := user.NewResolver(stores.Users)

	return &PublicAPI{
		validator: validator,

		Comment: &CommentAPI{
			comments:  stores.Comments,
			resolver:  resolver,
			assembler: comment.NewAssembler(stores.Comments, resolver, assemblerOpts...),
			checker:   comment.NewValidator(stores.Comments, validator),
			events:    sender,
			validator: validator,
		},
		Notifications: &NotificationsAPI{
			notifications: stores.Notifications,
			resolver:      resolver,
			validator:     validator,
		},
	}
}
