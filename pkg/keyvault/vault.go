// Package keyvault derives and protects the wallet's private key material.
// It is a pure transform: nothing in here touches the disk or the network,
// persistence of the derived keys belongs to the callers.
package keyvault

import "errors"

var (
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic must not be null")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrNegativeSequence ...
	ErrNegativeSequence = errors.New("derivation sequence must not be negative")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrNullPassword ...
	ErrNullPassword = errors.New("password must not be null")
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher must be in base64 format")
	// ErrCryptoFailed is the decryption mechanics failure. A wrong password
	// is not guaranteed to surface here: callers verify correctness by
	// re-deriving the public key from the decrypted secret.
	ErrCryptoFailed = errors.New("decryption failed")
	// ErrInvalidSecret ...
	ErrInvalidSecret = errors.New("secret is not a valid encoded seed")
)
