// Package authz implements the PermissionOracle port with a static
// administrator list supplied by configuration.
package authz

import (
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PermissionOracle = (*Oracle)(nil)

// Oracle answers permission questions from an in-memory set of
// administrator person ids. User-selectable note types are visible to
// everyone; everything else is administrator-only.
type Oracle struct {
	admins map[int64]struct{}
}

// NewOracle creates an Oracle granting administrator rights to the given
// person ids.
func NewOracle(adminPersonIDs []int64) *Oracle {
	admins := make(map[int64]struct{}, len(adminPersonIDs))
	for _, id := range adminPersonIDs {
		admins[id] = struct{}{}
	}
	return &Oracle{admins: admins}
}

// IsAdmin reports whether the person id is in the administrator set.
func (o *Oracle) IsAdmin(personID int64) bool {
	_, ok := o.admins[personID]
	return ok
}

// CanViewNote reports whether the viewer may see the note. Notes whose
// type is user selectable are public. System notes are visible only to
// administrators and to the note's own author.
func (o *Oracle) CanViewNote(note model.Note, viewerPersonID int64) bool {
	if note.NoteType.UserSelectable {
		return true
	}
	if o.IsAdmin(viewerPersonID) {
		return true
	}
	return note.AuthorPersonID != nil && *note.AuthorPersonID == viewerPersonID
}

// CanEditItem reports whether the viewer may modify or delete an item
// owned by ownerPersonID. Administrators may always edit; otherwise the
// viewer must be the owner. Items without an owner are
// administrator-only.
func (o *Oracle) CanEditItem(ownerPersonID *int64, viewerPersonID int64) bool {
	if o.IsAdmin(viewerPersonID) {
		return true
	}
	return ownerPersonID != nil && *ownerPersonID == viewerPersonID
}
