package driven

import (
	"context"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
)

// AttachmentStore defines the driven port for uploaded-file records. Byte
// storage lives outside this system; the store tracks identity and the
// temporary flag that drives external cleanup.
type AttachmentStore interface {
	// Create records a newly uploaded file as temporary.
	Create(ctx context.Context, fileName string) (model.Attachment, error)

	// Get returns an attachment by id. Returns ErrNotFound if no such
	// attachment exists.
	Get(ctx context.Context, id int64) (*model.Attachment, error)

	// MarkPermanent clears the temporary flag. Idempotent.
	MarkPermanent(ctx context.Context, id int64) error
}
