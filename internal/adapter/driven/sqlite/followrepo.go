package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.FollowStore = (*FollowRepo)(nil)

// FollowRepo is the SQLite implementation of the FollowStore port interface.
// The follows table carries a unique index on (item_type_id, item_id,
// person_alias_id), so Upsert is an idempotent INSERT OR IGNORE and the
// at-most-one-follow invariant holds even under concurrent inserts.
type FollowRepo struct {
	db *DB
}

// NewFollowRepo creates a new FollowRepo backed by the given DB.
func NewFollowRepo(db *DB) *FollowRepo {
	return &FollowRepo{db: db}
}

// IsFollowing reports whether the person follows the item through any of
// their aliases.
func (r *FollowRepo) IsFollowing(ctx context.Context, itemTypeID, itemID, personID int64) (bool, error) {
	const query = `
SELECT COUNT(*)
FROM follows f
JOIN person_aliases pa ON pa.id = f.person_alias_id
WHERE f.item_type_id = ? AND f.item_id = ? AND pa.person_id = ?`

	var count int
	err := r.db.reader(ctx).QueryRowContext(ctx, query, itemTypeID, itemID, personID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check following (%d, %d) by person %d: %w", itemTypeID, itemID, personID, err)
	}

	return count > 0, nil
}

// Upsert inserts a follow row for the alias. Silently succeeds when the row
// already exists.
func (r *FollowRepo) Upsert(ctx context.Context, itemTypeID, itemID, personAliasID int64) error {
	const query = `INSERT OR IGNORE INTO follows (item_type_id, item_id, person_alias_id, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.writer(ctx).ExecContext(ctx, query,
		itemTypeID, itemID, personAliasID, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("follow (%d, %d) by alias %d: %w", itemTypeID, itemID, personAliasID, err)
	}

	return nil
}

// DeleteAll removes every follow row the person holds on the item, across
// all of their aliases. Duplicates across aliases are handled defensively.
func (r *FollowRepo) DeleteAll(ctx context.Context, itemTypeID, itemID, personID int64) error {
	const query = `
DELETE FROM follows
WHERE item_type_id = ? AND item_id = ?
  AND person_alias_id IN (SELECT id FROM person_aliases WHERE person_id = ?)`

	_, err := r.db.writer(ctx).ExecContext(ctx, query, itemTypeID, itemID, personID)
	if err != nil {
		return fmt.Errorf("unfollow (%d, %d) by person %d: %w", itemTypeID, itemID, personID, err)
	}

	return nil
}

// ListFollowers returns all follow rows for the item in subscription order.
func (r *FollowRepo) ListFollowers(ctx context.Context, itemTypeID, itemID int64) ([]model.Follow, error) {
	const query = `
SELECT f.id, f.item_type_id, f.item_id, f.person_alias_id, f.created_at, pa.person_id
FROM follows f
JOIN person_aliases pa ON pa.id = f.person_alias_id
WHERE f.item_type_id = ? AND f.item_id = ?
ORDER BY f.created_at ASC, f.id ASC`

	rows, err := r.db.reader(ctx).QueryContext(ctx, query, itemTypeID, itemID)
	if err != nil {
		return nil, fmt.Errorf("list followers of (%d, %d): %w", itemTypeID, itemID, err)
	}
	defer rows.Close()

	var follows []model.Follow
	for rows.Next() {
		var f model.Follow
		var createdAt string
		if err := rows.Scan(&f.ID, &f.ItemTypeID, &f.ItemID, &f.PersonAliasID, &createdAt, &f.PersonID); err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		f.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for follow %d: %w", f.ID, err)
		}
		follows = append(follows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate followers of (%d, %d): %w", itemTypeID, itemID, err)
	}

	return follows, nil
}
