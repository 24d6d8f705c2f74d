package handlers

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"

	"github.com/buildwatch/notifier/model"
)

// NotificationCreator describes the fanout operation used by the build completion
// handler. It's implemented by service.Notifications.
type NotificationCreator interface {
	CreateAll(ctx context.Context, message *model.BuildMessage) error
}

// BuildCompleted is a message handler for build completion events published by the build
// service.
type BuildCompleted struct {
	notifications NotificationCreator
}

// NewBuildCompleted returns a new build completion event handler.
func NewBuildCompleted(notifications NotificationCreator) *BuildCompleted {
	return &BuildCompleted{notifications: notifications}
}

// HandleMessage handles a single AMQP delivery. A body that can't be parsed is
// unrecoverable because redelivering it would fail the same way. A fanout failure is
// recoverable: it means the subscriber set couldn't be resolved, and the event can be
// retried once the database is reachable again.
func (h *BuildCompleted) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {

	// Parse the message body.
	var message model.BuildMessage
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return NewUnrecoverableError("unable to parse message body: %s", err.Error())
	}
	if message.AuthorID == "" {
		return NewUnrecoverableError("message body doesn't contain an author ID")
	}

	// Fan the event out to the author's subscribers.
	err = h.notifications.CreateAll(ctx, &message)
	if err != nil {
		return NewRecoverableError("unable to process the build completion event: %s", err.Error())
	}

	return nil
}
