package application

import "errors"

var (
	// ErrWalletNotLoaded means an operation that needs an open wallet was
	// called outside the LOADED state.
	ErrWalletNotLoaded = errors.New("wallet is not loaded")
	// ErrWalletAlreadyLoaded ...
	ErrWalletAlreadyLoaded = errors.New("a wallet is already loaded")
	// ErrWrongPassword is a decryption whose result does not re-derive the
	// stored public key. It is re-enterable, never fatal.
	ErrWrongPassword = errors.New("wallet password is not valid")
	// ErrScanIncomplete means the discovery scan stopped on a transient
	// failure. Already committed accounts are intact and the scan can be
	// resumed from the last committed sequence.
	ErrScanIncomplete = errors.New("account discovery scan is incomplete")
	// ErrNullSetup ...
	ErrNullSetup = errors.New("wallet setup parameters must not be null")
)
