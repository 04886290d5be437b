package model

// Well-known note type IDs seeded by the initial migration.
const (
	NoteTypeComment int64 = 1
	NoteTypeSystem  int64 = 2
)

// NoteType classifies a note and carries its display metadata.
type NoteType struct {
	ID           int64
	Name         string
	CSSClass     string
	IconCSSClass string

	// UserSelectable is true for note types a person can post directly
	// (user comments) as opposed to system-generated notes.
	UserSelectable bool
}
