package driven

import "context"

// TxRunner executes a function within a single storage transaction. The
// transaction travels in the context handed to fn; store methods called with
// that context join it. If fn returns an error the transaction rolls back and
// nothing is durable. Nested InTx calls are not supported.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
