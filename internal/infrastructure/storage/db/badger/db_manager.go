package dbbadger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
	"github.com/casinocoin/cscwalletd/internal/core/ports"
)

// repoManager holds the wallet's badgerhold store and exposes the four typed
// collections over it. One wallet equals one store directory.
type repoManager struct {
	store *badgerhold.Store

	accountRepository     domain.AccountRepository
	keyRepository         domain.KeyRepository
	transactionRepository domain.TransactionRepository
	addressBookRepository domain.AddressBookRepository

	done chan struct{}
}

// WalletExists reports whether a wallet store has been created at the given
// directory. Callers use it to tell "no wallet yet" apart from "wallet
// exists but failed to open".
func WalletExists(dbDir string) bool {
	if _, err := os.Stat(filepath.Join(dbDir, badger.ManifestFilename)); err != nil {
		return false
	}
	return true
}

// NewRepoManager opens (or creates if not exists) the wallet store on disk
// and starts the periodic flush. Opening an existing directory a second time
// yields the same logical content.
func NewRepoManager(
	dbDir string, flushInterval time.Duration,
) (ports.RepoManager, error) {
	existed := WalletExists(dbDir)

	store, err := createDb(dbDir, nil)
	if err != nil {
		if existed {
			return nil, fmt.Errorf("%w: %s", domain.ErrOpenFailed, err)
		}
		return nil, fmt.Errorf("creating wallet db: %w", err)
	}

	manager := &repoManager{
		store:                 store,
		accountRepository:     newAccountRepositoryImpl(store),
		keyRepository:         newKeyRepositoryImpl(store),
		transactionRepository: newTransactionRepositoryImpl(store),
		addressBookRepository: newAddressBookRepositoryImpl(store),
		done:                  make(chan struct{}),
	}

	if flushInterval > 0 {
		go manager.flushLoop(flushInterval)
	}
	return manager, nil
}

func (r *repoManager) AccountRepository() domain.AccountRepository {
	return r.accountRepository
}

func (r *repoManager) KeyRepository() domain.KeyRepository {
	return r.keyRepository
}

func (r *repoManager) TransactionRepository() domain.TransactionRepository {
	return r.transactionRepository
}

func (r *repoManager) AddressBookRepository() domain.AddressBookRepository {
	return r.addressBookRepository
}

func (r *repoManager) Flush() error {
	return r.store.Badger().Sync()
}

func (r *repoManager) Close() error {
	close(r.done)
	if err := r.Flush(); err != nil {
		return err
	}
	return r.store.Close()
}

// walletDump is the serialized form of the whole store used for backups.
type walletDump struct {
	Accounts     []domain.Account          `json:"accounts"`
	Keys         []domain.Key              `json:"keys"`
	Transactions []domain.Transaction      `json:"transactions"`
	AddressBook  []domain.AddressBookEntry `json:"addressbook"`
}

func (r *repoManager) Export() ([]byte, error) {
	ctx := context.Background()
	dump := walletDump{}
	var err error

	if dump.Accounts, err = r.accountRepository.GetAll(ctx); err != nil {
		return nil, err
	}
	if dump.Keys, err = r.keyRepository.GetAll(ctx); err != nil {
		return nil, err
	}
	if dump.Transactions, err = r.transactionRepository.GetAll(ctx); err != nil {
		return nil, err
	}
	if dump.AddressBook, err = r.addressBookRepository.GetAll(ctx); err != nil {
		return nil, err
	}

	buf, err := json.Marshal(dump)
	if err != nil {
		return nil, err
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer encoder.Close()
	return encoder.EncodeAll(buf, nil), nil
}

func (r *repoManager) Import(blob []byte) error {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer decoder.Close()

	buf, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return fmt.Errorf("decompressing wallet dump: %w", err)
	}
	dump := walletDump{}
	if err := json.Unmarshal(buf, &dump); err != nil {
		return fmt.Errorf("decoding wallet dump: %w", err)
	}

	ctx := context.Background()
	if err := r.accountRepository.Clear(ctx); err != nil {
		return err
	}
	if err := r.keyRepository.Clear(ctx); err != nil {
		return err
	}
	if err := r.transactionRepository.Clear(ctx); err != nil {
		return err
	}
	if err := r.addressBookRepository.Clear(ctx); err != nil {
		return err
	}

	for i := range dump.Accounts {
		if err := r.accountRepository.Add(ctx, &dump.Accounts[i]); err != nil {
			return err
		}
	}
	for i := range dump.Keys {
		if err := r.keyRepository.Add(ctx, &dump.Keys[i]); err != nil {
			return err
		}
	}
	for i := range dump.Transactions {
		if err := r.transactionRepository.Add(ctx, &dump.Transactions[i]); err != nil {
			return err
		}
	}
	for i := range dump.AddressBook {
		if err := r.addressBookRepository.Add(ctx, &dump.AddressBook[i]); err != nil {
			return err
		}
	}
	return r.Flush()
}

func (r *repoManager) flushLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			if err := r.store.Badger().Sync(); err != nil {
				log.WithError(err).Warn("periodic wallet flush failed")
			}
		}
	}
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	opts.Compression = options.ZSTD

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
