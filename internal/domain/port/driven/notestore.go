package driven

import (
	"context"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
)

// NoteStore defines the driven port for comment persistence. Write methods
// participate in a transaction when the context carries one (see TxRunner).
type NoteStore interface {
	// Create inserts a note and returns it with its assigned ID.
	Create(ctx context.Context, note model.Note) (model.Note, error)

	// Get returns a note by id with its note type and author joined in.
	// Returns ErrNotFound if no such note exists.
	Get(ctx context.Context, id int64) (*model.Note, error)

	// ListThread returns all notes for the item ordered by created_at
	// ascending, with note type and author display data joined in.
	ListThread(ctx context.Context, itemTypeID, itemID int64) ([]model.Note, error)

	// CountByAuthor returns how many notes the given person has posted on
	// the item, across all of their aliases.
	CountByAuthor(ctx context.Context, itemTypeID, itemID, personID int64) (int, error)

	// Delete removes a note by id. Returns ErrNotFound if no row was deleted.
	Delete(ctx context.Context, id int64) error
}
