package sqlite

import (
	"context"
	"fmt"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TxRunner = (*TxRunner)(nil)

// TxRunner runs functions inside a single writer transaction carried through
// the context. Nested InTx calls are NOT supported — calling InTx inside an
// InTx callback starts a second independent transaction, which is a bug.
type TxRunner struct {
	db *DB
}

// NewTxRunner creates a TxRunner backed by the given DB.
func NewTxRunner(db *DB) *TxRunner {
	return &TxRunner{db: db}
}

// InTx executes fn within a database transaction on the writer connection.
// On success it commits. On error from fn it rolls back and returns the
// error. On panic from fn it rolls back and re-panics.
func (m *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
