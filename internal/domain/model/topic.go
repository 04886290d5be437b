package model

import "time"

// Topic is a forum topic, the concrete commentable item kind served by this
// application. Notes and follows reference it through ItemTypeTopic.
type Topic struct {
	ID          int64
	Name        string
	Description string // Raw markdown.
	CategoryID  int64

	CreatedByAliasID *int64
	CreatedAt        time.Time
	ModifiedAt       *time.Time

	// Display data joined in by the store on reads.
	AuthorPersonID *int64
	AuthorName     string
}
