package model

import "time"

// Notification represents a single build notification recorded in the database. Every
// notification belongs to exactly one subscription; deleting the subscription cascades
// to its notifications.
type Notification struct {
	ID           int64        `json:"id"`
	BuildID      int64        `json:"build_id"`
	Subscription Subscription `json:"subscription"`
	TimeCreated  time.Time    `json:"time_created"`
}
