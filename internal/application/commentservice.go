package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
	"github.com/ShepherdDev/rock-labs-forums/internal/render"
)

// maxCommentLength caps stored comment text. Matches the editor's limit so
// the API rejects what the UI would never send.
const maxCommentLength = 65535

// PostCommentInput carries everything needed to post one comment.
type PostCommentInput struct {
	ItemTypeID     int64
	ItemID         int64
	Text           string
	AuthorPersonID int64

	// AttachmentIDs lists the files uploaded while composing. Only the ones
	// the final text still references are promoted to permanent.
	AttachmentIDs []int64
}

// RenderedNote is a thread entry prepared for display: sanitized HTML,
// relative timestamp text, and the viewer's delete permission.
type RenderedNote struct {
	model.Note
	HTML       string
	PostedText string
	CanDelete  bool
}

// CommentService implements the comment posting and thread read workflows.
type CommentService struct {
	notes       driven.NoteStore
	follows     *FollowService
	attachments driven.AttachmentStore
	tx          driven.TxRunner
	perms       driven.PermissionOracle
	dispatcher  driven.NotificationDispatcher
	renderer    *render.Renderer
	resolveItem func(id int64) string
	itemTypes   *model.ItemTypeRegistry
	autoFollow  bool
	logger      *slog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewCommentService creates a CommentService. resolveItem maps an item id
// referenced as #<id> in comment text to its public URL; autoFollow controls
// whether a person's first comment on an item subscribes them to it.
func NewCommentService(
	notes driven.NoteStore,
	follows *FollowService,
	attachments driven.AttachmentStore,
	tx driven.TxRunner,
	perms driven.PermissionOracle,
	dispatcher driven.NotificationDispatcher,
	renderer *render.Renderer,
	resolveItem func(id int64) string,
	itemTypes *model.ItemTypeRegistry,
	autoFollow bool,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		notes:       notes,
		follows:     follows,
		attachments: attachments,
		tx:          tx,
		perms:       perms,
		dispatcher:  dispatcher,
		renderer:    renderer,
		resolveItem: resolveItem,
		itemTypes:   itemTypes,
		autoFollow:  autoFollow,
		logger:      logger,
		now:         time.Now,
	}
}

// PostComment saves a comment and runs its side effects in one transaction:
// attachments still referenced by the text become permanent, and the
// author's first comment on the item subscribes them to it (when auto-follow
// is enabled). Either everything is durable or nothing is. Follower
// notification happens after commit, off the request path.
func (s *CommentService) PostComment(ctx context.Context, input PostCommentInput) (model.Note, error) {
	if !s.itemTypes.Contains(input.ItemTypeID) {
		return model.Note{}, newValidationError("item_type_id", fmt.Sprintf("unknown item type %d", input.ItemTypeID))
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return model.Note{}, newValidationError("text", "must not be empty")
	}
	if len(text) > maxCommentLength {
		return model.Note{}, newValidationError("text", "too long")
	}

	aliasID, err := s.follows.aliases.PrimaryAliasID(ctx, input.AuthorPersonID)
	if err != nil {
		return model.Note{}, fmt.Errorf("resolving author %d: %w", input.AuthorPersonID, err)
	}

	var saved model.Note
	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		saved, err = s.notes.Create(txCtx, model.Note{
			NoteTypeID:       model.NoteTypeComment,
			ItemTypeID:       input.ItemTypeID,
			ItemID:           input.ItemID,
			Text:             text,
			CreatedByAliasID: &aliasID,
			CreatedAt:        s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("creating note: %w", err)
		}

		for _, fileID := range input.AttachmentIDs {
			if !strings.Contains(text, model.AttachmentRef(fileID)) {
				continue
			}
			if err := s.attachments.MarkPermanent(txCtx, fileID); err != nil {
				return fmt.Errorf("promoting attachment %d: %w", fileID, err)
			}
		}

		if s.autoFollow {
			count, err := s.notes.CountByAuthor(txCtx, input.ItemTypeID, input.ItemID, input.AuthorPersonID)
			if err != nil {
				return fmt.Errorf("counting author comments: %w", err)
			}
			if count == 1 {
				if err := s.follows.Follow(txCtx, input.ItemTypeID, input.ItemID, input.AuthorPersonID); err != nil {
					return fmt.Errorf("auto-following: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return model.Note{}, err
	}

	go s.notifyFollowers(context.WithoutCancel(ctx), saved, input.AuthorPersonID)

	return saved, nil
}

// ListThread returns the item's comments prepared for display, oldest first.
// Notes the viewer may not see are filtered out, cross-references are
// rewritten to links, and the markdown is rendered and sanitized.
func (s *CommentService) ListThread(ctx context.Context, itemTypeID, itemID, viewerPersonID int64) ([]RenderedNote, error) {
	if !s.itemTypes.Contains(itemTypeID) {
		return nil, newValidationError("item_type_id", fmt.Sprintf("unknown item type %d", itemTypeID))
	}

	notes, err := s.notes.ListThread(ctx, itemTypeID, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing thread: %w", err)
	}

	now := s.now().UTC()
	rendered := make([]RenderedNote, 0, len(notes))
	for _, note := range notes {
		if !s.perms.CanViewNote(note, viewerPersonID) {
			continue
		}
		rendered = append(rendered, RenderedNote{
			Note:       note,
			HTML:       s.renderText(note.Text),
			PostedText: render.RelativeTimeText(note.CreatedAt, now),
			CanDelete:  s.perms.CanEditItem(note.AuthorPersonID, viewerPersonID),
		})
	}
	return rendered, nil
}

// Preview renders comment text exactly as ListThread would, without saving
// anything.
func (s *CommentService) Preview(text string) string {
	return s.renderText(text)
}

// DeleteComment removes a comment. The author may always delete their own
// comment; administrators may delete any.
func (s *CommentService) DeleteComment(ctx context.Context, noteID, viewerPersonID int64) error {
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return fmt.Errorf("loading note %d: %w", noteID, err)
	}
	if !s.perms.CanEditItem(note.AuthorPersonID, viewerPersonID) {
		return ErrPermissionDenied
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return fmt.Errorf("deleting note %d: %w", noteID, err)
	}
	return nil
}

func (s *CommentService) renderText(text string) string {
	return s.renderer.Render(render.RewriteReferences(text, s.resolveItem))
}

// notifyFollowers tells the item's followers about a new comment. The author
// does not get notified about their own post. Failures are logged, never
// surfaced: the comment is already committed.
func (s *CommentService) notifyFollowers(ctx context.Context, note model.Note, authorPersonID int64) {
	follows, err := s.follows.Followers(ctx, note.ItemTypeID, note.ItemID)
	if err != nil {
		s.logger.Warn("listing followers for notification failed",
			"note_id", note.ID, "error", err)
		return
	}

	seen := make(map[int64]struct{}, len(follows))
	personIDs := make([]int64, 0, len(follows))
	for _, f := range follows {
		if f.PersonID == authorPersonID {
			continue
		}
		if _, dup := seen[f.PersonID]; dup {
			continue
		}
		seen[f.PersonID] = struct{}{}
		personIDs = append(personIDs, f.PersonID)
	}
	if len(personIDs) == 0 {
		return
	}

	err = s.dispatcher.NotifyFollowers(ctx, driven.Notification{
		ItemTypeID:        note.ItemTypeID,
		ItemID:            note.ItemID,
		NoteID:            note.ID,
		FollowerPersonIDs: personIDs,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("follower notification failed",
			"note_id", note.ID, "error", err)
	}
}
