package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// Repositories accept nil (non-transactional path) and detect the
// concrete handle (e.g. pgx.Tx) on the implementation side, so use-case
// interfaces stay free of storage types.
type Tx interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via tx. If fn returns an error the
// transaction is rolled back, otherwise committed.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
