package publicapi

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/gdblog/go-blog/service/auth"
	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/service/user"
	"github.com/gdblog/go-blog/validate"
)

type NotificationsAPI struct {
	notifications persist.NotificationRepository
	resolver      *user.Resolver
	validator     *validator.Validate
}

// NotificationView is a notification with its sender attached
type NotificationView struct {
	persist.Notification
	Sender *persist.UserSummary `json:"sender"`
}

type NotificationPage struct {
	Notifications []NotificationView `json:"records"`
	Total         int                `json:"total"`
	PageNumber    int                `json:"current"`
	PageSize      int                `json:"size"`
}

// ListNotificationsInput filters the caller's notifications. Empty Type and nil Status match all.
type ListNotificationsInput struct {
	Type   string `json:"type" form:"type"`
	Status *int   `json:"status" form:"status"`
	PageRequest
}

// MarkRead marks the caller's notifications among ids as read. Ids that belong to someone else or
// are already read are ignored, so the call always reports success once validated.
func (api NotificationsAPI) MarkRead(ctx context.Context, identity auth.Identity, ids []persist.DBID) (bool, error) {
	if !identity.IsAuthenticated() {
		return false, ErrNotAuthorized{Action: "read notifications"}
	}

	// Validate
	if err := validate.ValidateFields(api.validator, validate.ValidationMap{
		"ids": validate.WithTag(persist.DBIDList(ids).Int64s(), "min=1,dive,gt=0"),
	}); err != nil {
		return false, err
	}

	if _, err := api.notifications.MarkRead(ctx, identity.UserID, lo.Uniq(ids)); err != nil {
		return false, err
	}

	return true, nil
}

func (api NotificationsAPI) UnreadCount(ctx context.Context, identity auth.Identity) (int, error) {
	if !identity.IsAuthenticated() {
		return 0, ErrNotAuthorized{Action: "read notifications"}
	}
	return api.notifications.CountUnread(ctx, identity.UserID)
}

func (api NotificationsAPI) ListNotifications(ctx context.Context, identity auth.Identity, input ListNotificationsInput) (NotificationPage, error) {
	if !identity.IsAuthenticated() {
		return NotificationPage{}, ErrNotAuthorized{Action: "read notifications"}
	}

	// Validate
	fields := validate.ValidationMap{
		"type": validate.WithTag(input.Type, "notification_type"),
	}
	if input.Status != nil {
		fields["status"] = validate.WithTag(*input.Status, "oneof=0 1")
	}
	if err := validate.ValidateFields(api.validator, fields); err != nil {
		return NotificationPage{}, err
	}

	page, err := input.PageRequest.normalize(api.validator)
	if err != nil {
		return NotificationPage{}, err
	}

	filter := persist.NotificationFilter{}
	if input.Type != "" {
		t, err := persist.ParseNotificationType(input.Type)
		if err != nil {
			return NotificationPage{}, validate.NewErrInvalidInput("type", err.Error())
		}
		filter.Type = &t
	}
	if input.Status != nil {
		s := persist.NotificationStatus(*input.Status)
		filter.Status = &s
	}

	var notifs []persist.Notification
	var total int

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		notifs, err = api.notifications.List(gCtx, identity.UserID, filter, page.PageSize, page.offset())
		return err
	})
	g.Go(func() error {
		var err error
		total, err = api.notifications.Count(gCtx, identity.UserID, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return NotificationPage{}, err
	}

	senderIDs := lo.Map(notifs, func(n persist.Notification, _ int) persist.DBID { return n.SenderID })
	senders, err := api.resolver.ResolveMany(ctx, senderIDs)
	if err != nil {
		return NotificationPage{}, err
	}

	views := make([]NotificationView, 0, len(notifs))
	for _, n := range notifs {
		view := NotificationView{Notification: n}
		if sender, ok := senders[n.SenderID]; ok {
			view.Sender = &sender
		}
		views = append(views, view)
	}

	return NotificationPage{
		Notifications: views,
		Total:         total,
		PageNumber:    page.PageNumber,
		PageSize:      page.PageSize,
	}, nil
}
