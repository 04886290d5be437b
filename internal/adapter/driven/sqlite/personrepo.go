package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PersonStore = (*PersonRepo)(nil)

// PersonRepo is the SQLite implementation of the PersonStore port interface
// (and with it the AliasResolver).
type PersonRepo struct {
	db *DB
}

// NewPersonRepo creates a new PersonRepo backed by the given DB.
func NewPersonRepo(db *DB) *PersonRepo {
	return &PersonRepo{db: db}
}

// CreatePerson inserts a person and their primary alias in one local
// transaction so a person can never exist without an alias.
func (r *PersonRepo) CreatePerson(ctx context.Context, name string) (model.Person, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.Person{}, fmt.Errorf("create person %q: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `INSERT INTO persons (name) VALUES (?)`, name)
	if err != nil {
		return model.Person{}, fmt.Errorf("create person %q: %w", name, err)
	}
	personID, err := result.LastInsertId()
	if err != nil {
		return model.Person{}, fmt.Errorf("person insert id: %w", err)
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO person_aliases (person_id, is_primary) VALUES (?, 1)`, personID)
	if err != nil {
		return model.Person{}, fmt.Errorf("create primary alias for person %d: %w", personID, err)
	}
	aliasID, err := result.LastInsertId()
	if err != nil {
		return model.Person{}, fmt.Errorf("alias insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Person{}, fmt.Errorf("create person %q: %w", name, err)
	}

	return model.Person{ID: personID, Name: name, PrimaryAliasID: aliasID}, nil
}

// GetPerson returns a person by id.
func (r *PersonRepo) GetPerson(ctx context.Context, id int64) (*model.Person, error) {
	const query = `
SELECT p.id, p.name, pa.id
FROM persons p
LEFT JOIN person_aliases pa ON pa.person_id = p.id AND pa.is_primary = 1
WHERE p.id = ?`

	var person model.Person
	var aliasID sql.NullInt64
	err := r.db.reader(ctx).QueryRowContext(ctx, query, id).Scan(&person.ID, &person.Name, &aliasID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get person %d: %w", id, driven.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get person %d: %w", id, err)
	}

	person.PrimaryAliasID = aliasID.Int64
	return &person, nil
}

// PrimaryAliasID returns the person's primary alias id, or ErrNotFound when
// the person does not exist or has no primary alias.
func (r *PersonRepo) PrimaryAliasID(ctx context.Context, personID int64) (int64, error) {
	const query = `SELECT id FROM person_aliases WHERE person_id = ? AND is_primary = 1`

	var aliasID int64
	err := r.db.reader(ctx).QueryRowContext(ctx, query, personID).Scan(&aliasID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("primary alias of person %d: %w", personID, driven.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("primary alias of person %d: %w", personID, err)
	}

	return aliasID, nil
}
