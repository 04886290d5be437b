package driven

import (
	"context"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
)

// AliasResolver resolves a person to the alias identity used when writing
// follow records. A person with no alias is treated by callers as "skip",
// not as a failure.
type AliasResolver interface {
	// PrimaryAliasID returns the person's primary alias id. Returns
	// ErrNotFound when the person does not exist or has no alias.
	PrimaryAliasID(ctx context.Context, personID int64) (int64, error)
}

// PersonStore defines the driven port for the person directory.
type PersonStore interface {
	AliasResolver

	// CreatePerson inserts a person together with their primary alias.
	CreatePerson(ctx context.Context, name string) (model.Person, error)

	// GetPerson returns a person by id. Returns ErrNotFound if no such
	// person exists.
	GetPerson(ctx context.Context, id int64) (*model.Person, error)
}
