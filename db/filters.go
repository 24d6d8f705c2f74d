package db

import (
	sq "github.com/Masterminds/squirrel"
)

// SubscriptionFilter represents the optional constraints that can be applied to a
// subscription listing. Blank fields impose no constraint; present fields are ANDed
// together as equality constraints in a fixed order, so the resulting query doesn't
// depend on how the filter was populated.
type SubscriptionFilter struct {
	SubscriberID   string
	SubscribedAtID string
}

// Apply adds the filter's constraints to a select builder.
func (f SubscriptionFilter) Apply(builder sq.SelectBuilder) sq.SelectBuilder {
	if f.SubscriberID != "" {
		builder = builder.Where(sq.Eq{"s.subscriber_id": f.SubscriberID})
	}
	if f.SubscribedAtID != "" {
		builder = builder.Where(sq.Eq{"s.subscribed_at_id": f.SubscribedAtID})
	}
	return builder
}

// NotificationFilter represents the optional constraints that can be applied to a
// notification listing. Nil fields impose no constraint.
type NotificationFilter struct {
	SubscriptionID *int64
	BuildID        *int64
}

// Apply adds the filter's constraints to a select builder.
func (f NotificationFilter) Apply(builder sq.SelectBuilder) sq.SelectBuilder {
	if f.SubscriptionID != nil {
		builder = builder.Where(sq.Eq{"n.subscription_id": *f.SubscriptionID})
	}
	if f.BuildID != nil {
		builder = builder.Where(sq.Eq{"n.build_id": *f.BuildID})
	}
	return builder
}
