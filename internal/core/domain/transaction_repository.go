package domain

import "context"

// TransactionRepository is the transactions collection, keyed uniquely by
// transaction id.
type TransactionRepository interface {
	Add(ctx context.Context, tx *Transaction) error
	Get(ctx context.Context, txID string) (*Transaction, error)
	// GetAll returns all transactions sorted by descending timestamp.
	GetAll(ctx context.Context) ([]Transaction, error)
	// GetPage returns transactions sorted by descending timestamp, skipping
	// offset records and returning at most limit.
	GetPage(ctx context.Context, offset, limit int) ([]Transaction, error)
	GetPageByAddress(ctx context.Context, address string, offset, limit int) ([]Transaction, error)
	GetPageByCurrency(ctx context.Context, currency string, offset, limit int) ([]Transaction, error)
	// GetAllByAddress returns the validated transactions touching the
	// address, sorted by ascending ledger index.
	GetAllByAddress(ctx context.Context, address string) ([]Transaction, error)
	GetAllUnvalidated(ctx context.Context) ([]Transaction, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, tx *Transaction) error
	// RemoveAllByAddress is the cascade used by explicit account removal.
	RemoveAllByAddress(ctx context.Context, address string) error
	Clear(ctx context.Context) error
}
