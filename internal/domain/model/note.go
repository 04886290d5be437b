package model

import "time"

// Note is a single persisted comment attached to an item. A thread is the set
// of notes sharing the same (ItemTypeID, ItemID), ordered by CreatedAt
// ascending.
type Note struct {
	ID         int64
	Guid       string
	NoteTypeID int64
	ItemTypeID int64
	ItemID     int64
	Text       string // Raw markdown; rendered at read time, never stored as HTML.

	// CreatedByAliasID is the author's alias identity. Nil for notes created
	// by the system rather than a person.
	CreatedByAliasID *int64
	CreatedAt        time.Time

	// Display data joined in by the store on reads.
	NoteType       NoteType
	AuthorPersonID *int64
	AuthorName     string
}
