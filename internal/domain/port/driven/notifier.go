package driven

import "context"

// Notification describes a newly posted comment and the item's current
// followers. Delivery deduplication is the dispatcher's problem, not ours.
type Notification struct {
	ItemTypeID        int64
	ItemID            int64
	NoteID            int64
	FollowerPersonIDs []int64
}

// NotificationDispatcher delivers follower notifications. Dispatch is
// fire-and-forget relative to the posting workflow: callers invoke it after
// commit, off the request path, and only log failures.
type NotificationDispatcher interface {
	NotifyFollowers(ctx context.Context, n Notification) error
}
