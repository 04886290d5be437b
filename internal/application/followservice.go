package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
)

// FollowService manages follow subscriptions on commentable items. All
// operations are idempotent: following twice leaves one subscription,
// unfollowing a non-follower is a no-op.
type FollowService struct {
	follows   driven.FollowStore
	aliases   driven.AliasResolver
	itemTypes *model.ItemTypeRegistry
	logger    *slog.Logger
}

// NewFollowService creates a FollowService with the required dependencies.
func NewFollowService(
	follows driven.FollowStore,
	aliases driven.AliasResolver,
	itemTypes *model.ItemTypeRegistry,
	logger *slog.Logger,
) *FollowService {
	return &FollowService{
		follows:   follows,
		aliases:   aliases,
		itemTypes: itemTypes,
		logger:    logger,
	}
}

// IsFollowing reports whether the person follows the item through any of
// their aliases.
func (s *FollowService) IsFollowing(ctx context.Context, itemTypeID, itemID, personID int64) (bool, error) {
	if err := s.checkItemType(itemTypeID); err != nil {
		return false, err
	}
	return s.follows.IsFollowing(ctx, itemTypeID, itemID, personID)
}

// Follow subscribes the person to the item. A person without a resolvable
// alias is skipped silently: the operation succeeds and changes nothing.
// Already-following persons are left with their single existing
// subscription.
func (s *FollowService) Follow(ctx context.Context, itemTypeID, itemID, personID int64) error {
	if err := s.checkItemType(itemTypeID); err != nil {
		return err
	}

	aliasID, err := s.aliases.PrimaryAliasID(ctx, personID)
	if errors.Is(err, driven.ErrNotFound) {
		s.logger.Debug("skipping follow for person without alias",
			"person_id", personID,
			"item_type_id", itemTypeID,
			"item_id", itemID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolving alias for person %d: %w", personID, err)
	}

	if err := s.follows.Upsert(ctx, itemTypeID, itemID, aliasID); err != nil {
		return fmt.Errorf("creating follow: %w", err)
	}
	return nil
}

// Unfollow removes every subscription the person holds on the item, across
// all of their aliases. No-op when none exist.
func (s *FollowService) Unfollow(ctx context.Context, itemTypeID, itemID, personID int64) error {
	if err := s.checkItemType(itemTypeID); err != nil {
		return err
	}
	if err := s.follows.DeleteAll(ctx, itemTypeID, itemID, personID); err != nil {
		return fmt.Errorf("removing follow: %w", err)
	}
	return nil
}

// Toggle flips the person's follow state on the item and returns the new
// state: true when the call resulted in a subscription, false when it
// removed one.
func (s *FollowService) Toggle(ctx context.Context, itemTypeID, itemID, personID int64) (bool, error) {
	following, err := s.IsFollowing(ctx, itemTypeID, itemID, personID)
	if err != nil {
		return false, err
	}
	if following {
		return false, s.Unfollow(ctx, itemTypeID, itemID, personID)
	}
	return true, s.Follow(ctx, itemTypeID, itemID, personID)
}

// Followers returns the persons subscribed to the item, one entry per
// follow row.
func (s *FollowService) Followers(ctx context.Context, itemTypeID, itemID int64) ([]model.Follow, error) {
	if err := s.checkItemType(itemTypeID); err != nil {
		return nil, err
	}
	return s.follows.ListFollowers(ctx, itemTypeID, itemID)
}

func (s *FollowService) checkItemType(itemTypeID int64) error {
	if !s.itemTypes.Contains(itemTypeID) {
		return newValidationError("item_type_id", fmt.Sprintf("unknown item type %d", itemTypeID))
	}
	return nil
}
