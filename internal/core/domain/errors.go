package domain

import "errors"

var (
	// ErrWalletNotExist means no wallet store exists at the given path yet.
	// First-run creation keys off this, it is not a failure to load.
	ErrWalletNotExist = errors.New("no wallet exists at the given location")
	// ErrOpenFailed means a wallet store exists but could not be loaded.
	ErrOpenFailed = errors.New("wallet store exists but failed to open")
	// ErrDuplicateKey is the unique-constraint violation on insert.
	ErrDuplicateKey = errors.New("an entity with the same unique key already exists")
	// ErrAccountNotFound ...
	ErrAccountNotFound = errors.New("account not found in the wallet")
	// ErrKeyNotFound ...
	ErrKeyNotFound = errors.New("key not found in the wallet")
	// ErrTransactionNotFound ...
	ErrTransactionNotFound = errors.New("transaction not found in the wallet")
	// ErrAddressNotFound ...
	ErrAddressNotFound = errors.New("address not found in the address book")
)
