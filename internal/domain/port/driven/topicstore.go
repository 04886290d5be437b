package driven

import (
	"context"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
)

// TopicStore defines the driven port for forum topic persistence.
type TopicStore interface {
	// Create inserts a topic and returns it with its assigned ID.
	Create(ctx context.Context, topic model.Topic) (model.Topic, error)

	// Get returns a topic by id with author display data joined in.
	// Returns ErrNotFound if no such topic exists.
	Get(ctx context.Context, id int64) (*model.Topic, error)

	// ListByCategory returns topics in the category ordered by created_at
	// descending (newest first).
	ListByCategory(ctx context.Context, categoryID int64) ([]model.Topic, error)

	// Delete removes a topic by id. Returns ErrNotFound if no row was deleted.
	Delete(ctx context.Context, id int64) error
}
