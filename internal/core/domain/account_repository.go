package domain

import "context"

// AccountRepository is the accounts collection. The (currency, address) pair
// is unique: Add returns ErrDuplicateKey on a second insert with the same
// pair, Update replaces the stored record by its primary key.
type AccountRepository interface {
	Add(ctx context.Context, account *Account) error
	Get(ctx context.Context, currency, address string) (*Account, error)
	GetAll(ctx context.Context) ([]Account, error)
	GetAllByAddress(ctx context.Context, address string) ([]Account, error)
	GetAllByCurrency(ctx context.Context, currency string) ([]Account, error)
	GetAllImported(ctx context.Context) ([]Account, error)
	// IsOwned reports whether any account in the wallet has the address,
	// regardless of currency. Transaction direction classification keys
	// off this.
	IsOwned(ctx context.Context, address string) (bool, error)
	// MaxSequence returns the highest derivation sequence in the wallet, or
	// ImportedSequence when the wallet holds no derived accounts yet.
	MaxSequence(ctx context.Context) (int, error)
	Update(ctx context.Context, account *Account) error
	Remove(ctx context.Context, currency, address string) error
	Clear(ctx context.Context) error
}
