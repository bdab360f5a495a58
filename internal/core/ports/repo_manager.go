package ports

import "github.com/casinocoin/cscwalletd/internal/core/domain"

// RepoManager gives access to the wallet store's collections plus the
// store-wide operations: explicit flush, full-content export/import for
// backups, and close.
type RepoManager interface {
	AccountRepository() domain.AccountRepository
	KeyRepository() domain.KeyRepository
	TransactionRepository() domain.TransactionRepository
	AddressBookRepository() domain.AddressBookRepository

	// Flush forces pending writes to disk. The store also flushes on a
	// timer, this is the synchronous variant used on close.
	Flush() error
	// Export dumps the full store content as a compressed blob that Import
	// round-trips byte for byte.
	Export() ([]byte, error)
	Import(blob []byte) error
	Close() error
}
