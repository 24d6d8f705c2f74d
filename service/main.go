// Package service contains the business rules for subscriptions and notifications:
// who may touch which records, and the fanout that turns one build completion event
// into one notification and one email per subscriber.
package service

import (
	"context"

	"github.com/buildwatch/notifier/db"
	"github.com/buildwatch/notifier/model"
)

// SubscriptionStore describes the subscription persistence operations used by the
// services. It's implemented by db.Subscriptions.
type SubscriptionStore interface {
	Insert(ctx context.Context, subscription *model.Subscription) error
	GetByID(ctx context.Context, id int64) (*model.Subscription, error)
	ExistsPair(ctx context.Context, subscriberID, subscribedAtID string) (bool, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter db.SubscriptionFilter, page model.PageRequest) ([]model.Subscription, int64, error)
	ListBySubscribedAtID(ctx context.Context, subscribedAtID string) ([]model.Subscription, error)
}

// NotificationStore describes the notification persistence operations used by the
// services. It's implemented by db.Notifications.
type NotificationStore interface {
	Insert(ctx context.Context, notification *model.Notification) error
	GetByID(ctx context.Context, id int64) (*model.Notification, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter db.NotificationFilter, page model.PageRequest) ([]model.Notification, int64, error)
	ListBySubscriberID(ctx context.Context, subscriberID string, page model.PageRequest) ([]model.Notification, int64, error)
}
