package driven

import "github.com/ShepherdDev/rock-labs-forums/internal/domain/model"

// PermissionOracle answers authorization questions for the thread read path
// and for destructive operations. Evaluation is assumed cheap and local;
// security policy configuration lives behind the implementation.
type PermissionOracle interface {
	// CanViewNote reports whether the viewer may see the note in a thread
	// listing.
	CanViewNote(note model.Note, viewerID int64) bool

	// CanEditItem reports whether the viewer may modify or delete content
	// owned by ownerPersonID (nil when the owner is unknown or the system).
	CanEditItem(ownerPersonID *int64, viewerID int64) bool
}
