package driven

import (
	"context"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
)

// FollowStore defines the driven port for follow subscriptions. Upsert is
// idempotent: the store enforces at most one row per
// (itemTypeID, itemID, personAliasID), so concurrent inserts cannot create
// duplicates.
type FollowStore interface {
	// IsFollowing reports whether the person follows the item through any
	// of their aliases.
	IsFollowing(ctx context.Context, itemTypeID, itemID, personID int64) (bool, error)

	// Upsert inserts a follow row for the alias. Silently succeeds when the
	// row already exists.
	Upsert(ctx context.Context, itemTypeID, itemID, personAliasID int64) error

	// DeleteAll removes every follow row the person holds on the item,
	// across all of their aliases. No-op when none exist.
	DeleteAll(ctx context.Context, itemTypeID, itemID, personID int64) error

	// ListFollowers returns all follow rows for the item with the person
	// behind each alias joined in.
	ListFollowers(ctx context.Context, itemTypeID, itemID int64) ([]model.Follow, error)
}
