// Package walletindex maintains the small available-wallets index: a JSON
// file next to the wallet directories mapping wallet identifiers to their
// location and metadata, so multiple wallet files can coexist.
package walletindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
)

const indexFilename = "wallets.json"

var (
	// ErrWalletUnknown ...
	ErrWalletUnknown = errors.New("wallet is not in the available wallets index")
)

// Index is the on-disk available-wallets registry.
type Index struct {
	path string
}

// New returns an Index rooted at the given data directory. The index file is
// created lazily on the first upsert.
func New(datadir string) *Index {
	return &Index{path: filepath.Join(datadir, indexFilename)}
}

// List returns all registered wallet definitions.
func (i *Index) List() ([]domain.WalletDefinition, error) {
	buf, err := os.ReadFile(i.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var defs []domain.WalletDefinition
	if err := json.Unmarshal(buf, &defs); err != nil {
		return nil, fmt.Errorf("decoding wallet index: %w", err)
	}
	return defs, nil
}

// Get returns the definition for a wallet identifier.
func (i *Index) Get(walletUUID string) (*domain.WalletDefinition, error) {
	defs, err := i.List()
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if def.WalletUUID == walletUUID {
			return &def, nil
		}
	}
	return nil, ErrWalletUnknown
}

// Upsert adds or replaces the definition for its wallet identifier.
func (i *Index) Upsert(def domain.WalletDefinition) error {
	defs, err := i.List()
	if err != nil {
		return err
	}
	replaced := false
	for idx := range defs {
		if defs[idx].WalletUUID == def.WalletUUID {
			defs[idx] = def
			replaced = true
			break
		}
	}
	if !replaced {
		defs = append(defs, def)
	}
	return i.write(defs)
}

// Remove drops a wallet from the index. Removing an unknown wallet is a
// no-op.
func (i *Index) Remove(walletUUID string) error {
	defs, err := i.List()
	if err != nil {
		return err
	}
	kept := make([]domain.WalletDefinition, 0, len(defs))
	for _, def := range defs {
		if def.WalletUUID != walletUUID {
			kept = append(kept, def)
		}
	}
	return i.write(kept)
}

func (i *Index) write(defs []domain.WalletDefinition) error {
	buf, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(i.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(i.path, buf, 0600)
}
