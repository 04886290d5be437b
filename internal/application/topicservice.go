package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
	"github.com/ShepherdDev/rock-labs-forums/internal/render"
)

// CreateTopicInput carries everything needed to open a new topic.
type CreateTopicInput struct {
	Name            string
	Description     string
	CategoryID      int64
	CreatorPersonID int64
}

// RenderedTopic is a topic prepared for display.
type RenderedTopic struct {
	model.Topic
	DescriptionHTML string
	CreatedText     string
}

// TopicService manages forum topics, the commentable items this application
// serves.
type TopicService struct {
	topics      driven.TopicStore
	follows     *FollowService
	tx          driven.TxRunner
	perms       driven.PermissionOracle
	renderer    *render.Renderer
	resolveItem func(id int64) string
	logger      *slog.Logger

	now func() time.Time
}

// NewTopicService creates a TopicService with the required dependencies.
func NewTopicService(
	topics driven.TopicStore,
	follows *FollowService,
	tx driven.TxRunner,
	perms driven.PermissionOracle,
	renderer *render.Renderer,
	resolveItem func(id int64) string,
	logger *slog.Logger,
) *TopicService {
	return &TopicService{
		topics:      topics,
		follows:     follows,
		tx:          tx,
		perms:       perms,
		renderer:    renderer,
		resolveItem: resolveItem,
		logger:      logger,
		now:         time.Now,
	}
}

// Create opens a topic and subscribes its creator to it, atomically. A
// creator without a resolvable alias still gets their topic; only the
// subscription is skipped.
func (s *TopicService) Create(ctx context.Context, input CreateTopicInput) (model.Topic, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return model.Topic{}, newValidationError("name", "must not be empty")
	}

	aliasID, err := s.follows.aliases.PrimaryAliasID(ctx, input.CreatorPersonID)
	if err != nil {
		return model.Topic{}, fmt.Errorf("resolving creator %d: %w", input.CreatorPersonID, err)
	}

	var saved model.Topic
	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		saved, err = s.topics.Create(txCtx, model.Topic{
			Name:             name,
			Description:      strings.TrimSpace(input.Description),
			CategoryID:       input.CategoryID,
			CreatedByAliasID: &aliasID,
			CreatedAt:        s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("creating topic: %w", err)
		}
		if err := s.follows.Follow(txCtx, model.ItemTypeTopic, saved.ID, input.CreatorPersonID); err != nil {
			return fmt.Errorf("subscribing creator: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Topic{}, err
	}
	return saved, nil
}

// Get returns a topic prepared for display.
func (s *TopicService) Get(ctx context.Context, id int64) (*RenderedTopic, error) {
	topic, err := s.topics.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RenderedTopic{
		Topic:           *topic,
		DescriptionHTML: s.renderer.Render(render.RewriteReferences(topic.Description, s.resolveItem)),
		CreatedText:     render.RelativeDateText(topic.CreatedAt, s.now().UTC(), true),
	}, nil
}

// ListByCategory returns the category's topics, newest first.
func (s *TopicService) ListByCategory(ctx context.Context, categoryID int64) ([]model.Topic, error) {
	return s.topics.ListByCategory(ctx, categoryID)
}

// Delete removes a topic. Only the topic's creator and administrators may
// delete it. The topic's notes and follows stay behind as orphans; cleanup
// is a maintenance concern, not a request-path one.
func (s *TopicService) Delete(ctx context.Context, id, viewerPersonID int64) error {
	topic, err := s.topics.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("loading topic %d: %w", id, err)
	}
	if !s.perms.CanEditItem(topic.AuthorPersonID, viewerPersonID) {
		return ErrPermissionDenied
	}
	if err := s.topics.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting topic %d: %w", id, err)
	}
	return nil
}
