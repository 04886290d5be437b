package model

import "time"

// Follow is a subscription record linking a subscriber to an item for
// notification purposes. The row references the subscriber's alias rather
// than the person directly; at most one row may exist per
// (ItemTypeID, ItemID, PersonAliasID), enforced by a unique index.
type Follow struct {
	ID            int64
	ItemTypeID    int64
	ItemID        int64
	PersonAliasID int64
	CreatedAt     time.Time

	// PersonID is the person behind the alias, joined in on reads.
	PersonID int64
}
