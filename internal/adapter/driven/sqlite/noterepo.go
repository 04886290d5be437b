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
var _ driven.NoteStore = (*NoteRepo)(nil)

// NoteRepo is the SQLite implementation of the NoteStore port interface.
type NoteRepo struct {
	db *DB
}

// NewNoteRepo creates a new NoteRepo backed by the given DB.
func NewNoteRepo(db *DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// noteSelect joins in the note type display metadata and the author person
// behind the creating alias. Author columns are nullable: system notes have
// no creating alias.
const noteSelect = `
SELECT n.id, n.guid, n.note_type_id, n.item_type_id, n.item_id, n.text,
       n.created_by_alias_id, n.created_at,
       t.name, t.css_class, t.icon_css_class, t.user_selectable,
       pa.person_id, p.name
FROM notes n
JOIN note_types t ON t.id = n.note_type_id
LEFT JOIN person_aliases pa ON pa.id = n.created_by_alias_id
LEFT JOIN persons p ON p.id = pa.person_id`

// Create inserts a note and returns it with its assigned ID and GUID. A zero
// CreatedAt is replaced with the current UTC time.
func (r *NoteRepo) Create(ctx context.Context, note model.Note) (model.Note, error) {
	const query = `INSERT INTO notes (guid, note_type_id, item_type_id, item_id, text, created_by_alias_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	if note.Guid == "" {
		note.Guid = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.writer(ctx).ExecContext(ctx, query,
		note.Guid, note.NoteTypeID, note.ItemTypeID, note.ItemID,
		note.Text, note.CreatedByAliasID, note.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}

	note.ID, err = result.LastInsertId()
	if err != nil {
		return model.Note{}, fmt.Errorf("note insert id: %w", err)
	}

	return note, nil
}

// Get returns a note by id with display data joined in.
func (r *NoteRepo) Get(ctx context.Context, id int64) (*model.Note, error) {
	row := r.db.reader(ctx).QueryRowContext(ctx, noteSelect+` WHERE n.id = ?`, id)

	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get note %d: %w", id, driven.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get note %d: %w", id, err)
	}

	return note, nil
}

// ListThread returns all notes for the item ordered by created_at ascending.
func (r *NoteRepo) ListThread(ctx context.Context, itemTypeID, itemID int64) ([]model.Note, error) {
	query := noteSelect + ` WHERE n.item_type_id = ? AND n.item_id = ? ORDER BY n.created_at ASC, n.id ASC`

	rows, err := r.db.reader(ctx).QueryContext(ctx, query, itemTypeID, itemID)
	if err != nil {
		return nil, fmt.Errorf("list thread (%d, %d): %w", itemTypeID, itemID, err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thread (%d, %d): %w", itemTypeID, itemID, err)
	}

	return notes, nil
}

// CountByAuthor returns how many notes the person has posted on the item
// through any of their aliases.
func (r *NoteRepo) CountByAuthor(ctx context.Context, itemTypeID, itemID, personID int64) (int, error) {
	const query = `
SELECT COUNT(*)
FROM notes n
JOIN person_aliases pa ON pa.id = n.created_by_alias_id
WHERE n.item_type_id = ? AND n.item_id = ? AND pa.person_id = ?`

	var count int
	err := r.db.reader(ctx).QueryRowContext(ctx, query, itemTypeID, itemID, personID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notes by author %d on (%d, %d): %w", personID, itemTypeID, itemID, err)
	}

	return count, nil
}

// Delete removes a note by id.
func (r *NoteRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.writer(ctx).ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete note %d: %w", id, driven.ErrNotFound)
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanNote.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(s rowScanner) (*model.Note, error) {
	var (
		note           model.Note
		createdByAlias sql.NullInt64
		createdAt      string
		authorPersonID sql.NullInt64
		authorName     sql.NullString
	)

	err := s.Scan(
		&note.ID, &note.Guid, &note.NoteTypeID, &note.ItemTypeID, &note.ItemID, &note.Text,
		&createdByAlias, &createdAt,
		&note.NoteType.Name, &note.NoteType.CSSClass, &note.NoteType.IconCSSClass, &note.NoteType.UserSelectable,
		&authorPersonID, &authorName,
	)
	if err != nil {
		return nil, err
	}

	note.NoteType.ID = note.NoteTypeID
	if createdByAlias.Valid {
		note.CreatedByAliasID = &createdByAlias.Int64
	}
	if authorPersonID.Valid {
		note.AuthorPersonID = &authorPersonID.Int64
	}
	note.AuthorName = authorName.String

	note.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &note, nil
}
