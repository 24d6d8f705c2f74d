package model

// BuildMessage represents a single build completion event delivered over AMQP.
type BuildMessage struct {
	AuthorID         string `json:"author_id"`
	BuildID          int64  `json:"build_id"`
	BuildName        string `json:"build_name"`
	BuildDescription string `json:"build_description"`
}
