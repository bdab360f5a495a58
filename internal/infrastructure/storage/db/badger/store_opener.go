package dbbadger

import (
	"time"

	"github.com/casinocoin/cscwalletd/internal/core/ports"
)

// StoreOpener adapts the badger-backed store to the session controller's
// opener contract.
type StoreOpener struct {
	flushInterval time.Duration
}

func NewStoreOpener(flushInterval time.Duration) *StoreOpener {
	return &StoreOpener{flushInterval: flushInterval}
}

func (o *StoreOpener) Exists(dbDir string) bool {
	return WalletExists(dbDir)
}

func (o *StoreOpener) Open(dbDir string) (ports.RepoManager, error) {
	return NewRepoManager(dbDir, o.flushInterval)
}
