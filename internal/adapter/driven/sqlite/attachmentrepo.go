package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AttachmentStore = (*AttachmentRepo)(nil)

// AttachmentRepo is the SQLite implementation of the AttachmentStore port
// interface.
type AttachmentRepo struct {
	db *DB
}

// NewAttachmentRepo creates a new AttachmentRepo backed by the given DB.
func NewAttachmentRepo(db *DB) *AttachmentRepo {
	return &AttachmentRepo{db: db}
}

// Create records a newly uploaded file as temporary.
func (r *AttachmentRepo) Create(ctx context.Context, fileName string) (model.Attachment, error) {
	const query = `INSERT INTO attachments (guid, file_name, is_temporary, created_at) VALUES (?, ?, 1, ?)`

	att := model.Attachment{
		Guid:        uuid.NewString(),
		FileName:    fileName,
		IsTemporary: true,
		CreatedAt:   time.Now().UTC(),
	}

	result, err := r.db.writer(ctx).ExecContext(ctx, query,
		att.Guid, att.FileName, att.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.Attachment{}, fmt.Errorf("create attachment %q: %w", fileName, err)
	}

	att.ID, err = result.LastInsertId()
	if err != nil {
		return model.Attachment{}, fmt.Errorf("attachment insert id: %w", err)
	}

	return att, nil
}

// Get returns an attachment by id.
func (r *AttachmentRepo) Get(ctx context.Context, id int64) (*model.Attachment, error) {
	const query = `SELECT id, guid, file_name, is_temporary, created_at FROM attachments WHERE id = ?`

	var att model.Attachment
	var createdAt string
	err := r.db.reader(ctx).QueryRowContext(ctx, query, id).
		Scan(&att.ID, &att.Guid, &att.FileName, &att.IsTemporary, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get attachment %d: %w", id, driven.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get attachment %d: %w", id, err)
	}

	att.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for attachment %d: %w", id, err)
	}

	return &att, nil
}

// MarkPermanent clears the temporary flag. Idempotent; marking an already
// permanent or unknown attachment is a no-op.
func (r *AttachmentRepo) MarkPermanent(ctx context.Context, id int64) error {
	_, err := r.db.writer(ctx).ExecContext(ctx, `UPDATE attachments SET is_temporary = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark attachment %d permanent: %w", id, err)
	}

	return nil
}
