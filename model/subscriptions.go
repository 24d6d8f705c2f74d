package model

import "time"

// Subscription represents a single watch relationship: the subscriber wants to be
// notified whenever the watched author completes a build. The subscriber's email
// address and the author's display name are resolved once at creation time and
// stored with the subscription; they're never updated afterwards.
type Subscription struct {
	ID                   int64     `json:"id"`
	SubscriberID         string    `json:"subscriber_id"`
	SubscribedAtID       string    `json:"subscribed_at_id"`
	SubscriberEmail      string    `json:"subscriber_email"`
	SubscribedAtUsername string    `json:"subscribed_at_username"`
	TimeCreated          time.Time `json:"time_created"`
}
