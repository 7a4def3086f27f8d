package event

import (
	"context"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/service/notifications"
	"github.com/gdblog/go-blog/service/persist"
	sentryutil "github.com/gdblog/go-blog/service/sentry"
)

const sentryEventContextName = "event context"

type Action string

const (
	ActionCommentCreated Action = "CommentCreated"
)

// Event is something that happened after a write was committed
type Event struct {
	Action  Action              `validate:"required"`
	ActorID persist.DBID        `validate:"gt=0"`
	Actor   persist.UserSummary `validate:"-"`
	Comment persist.Comment     `validate:"-"`
}

// CommentCreated builds the event sent once a comment has been stored
func CommentCreated(comment persist.Comment, author persist.UserSummary) Event {
	return Event{
		Action:  ActionCommentCreated,
		ActorID: author.ID,
		Actor:   author,
		Comment: comment,
	}
}

type handler interface {
	handle(context.Context, Event) error
}

// Sender runs the handlers registered for an event after the write that caused it has been
// committed. Handler failures are logged and reported, never returned to the caller.
type Sender struct {
	dispatcher *eventDispatcher
	registry   map[Action]struct{}
	validate   *validator.Validate
}

func NewSender(fanout *notifications.Fanout) *Sender {
	sender := newEventSender()

	notificationHandler := newNotificationHandler(fanout)
	sender.addHandler(ActionCommentCreated, notificationHandler)

	return sender
}

func newEventSender() *Sender {
	v := validator.New()
	v.RegisterStructValidation(eventValidator, Event{})
	return &Sender{
		dispatcher: newEventDispatcher(),
		registry:   map[Action]struct{}{},
		validate:   v,
	}
}

func (s *Sender) addHandler(action Action, h handler) {
	s.dispatcher.add(action, h)
	s.registry[action] = struct{}{}
}

// Dispatch sends evt to its handlers and waits for them. It runs on a cloned sentry hub so that
// handler failures are reported without touching the request's scope.
func (s *Sender) Dispatch(ctx context.Context, evt Event) {
	ctx = sentryutil.NewSentryHubContext(ctx)

	if err := s.dispatch(ctx, evt); err != nil {
		logger.For(ctx).WithField("action", evt.Action).Errorf("failed to handle event: %s", err)
		sentryutil.ReportError(ctx, err, func(scope *sentry.Scope) {
			setEventContext(scope, evt.ActorID, evt.Comment.ID, evt.Action)
		})
	}
}

func (s *Sender) dispatch(ctx context.Context, evt Event) error {
	// validate event
	if err := s.validate.Struct(evt); err != nil {
		return err
	}

	if _, handable := s.registry[evt.Action]; !handable {
		logger.For(ctx).WithField("action", evt.Action).Warn("no handler configured for action")
		return nil
	}

	return s.dispatcher.dispatch(ctx, evt)
}

func setEventContext(scope *sentry.Scope, actorID, subjectID persist.DBID, action Action) {
	scope.SetContext(sentryEventContextName, sentry.Context{
		"ActorID":   actorID,
		"SubjectID": subjectID,
		"Action":    action,
	})
}

func eventValidator(sl validator.StructLevel) {
	evt := sl.Current().Interface().(Event)

	switch evt.Action {
	case ActionCommentCreated:
		if !evt.Comment.ID.IsValid() {
			sl.ReportError(evt.Comment.ID, "Comment.ID", "ID", "required", "")
		}
		if evt.Comment.UserID != evt.ActorID {
			sl.ReportError(evt.ActorID, "ActorID", "ActorID", "eqfield", "Comment.UserID")
		}
	}
}

type eventDispatcher struct {
	handlers map[Action][]handler
}

func newEventDispatcher() *eventDispatcher {
	return &eventDispatcher{handlers: map[Action][]handler{}}
}

func (d *eventDispatcher) add(action Action, h handler) {
	d.handlers[action] = append(d.handlers[action], h)
}

// dispatch runs every handler for the event concurrently and returns the first error
func (d *eventDispatcher) dispatch(ctx context.Context, evt Event) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, h := range d.handlers[evt.Action] {
		h := h
		eg.Go(func() error { return h.handle(ctx, evt) })
	}
	return eg.Wait()
}

// notificationHandler handles events for consumption as notifications.
type notificationHandler struct {
	fanout *notifications.Fanout
}

func newNotificationHandler(fanout *notifications.Fanout) *notificationHandler {
	return &notificationHandler{fanout: fanout}
}

func (h notificationHandler) handle(ctx context.Context, evt Event) error {
	switch evt.Action {
	case ActionCommentCreated:
		return h.fanout.OnCommentCreated(ctx, evt.Comment, evt.Actor)
	}
	return fmt.Errorf("no notification configured for action: %s", evt.Action)
}
