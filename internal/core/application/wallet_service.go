package application

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
	"github.com/casinocoin/cscwalletd/internal/core/ports"
	"github.com/casinocoin/cscwalletd/pkg/cscutil"
	"github.com/casinocoin/cscwalletd/pkg/keyvault"
)

// WalletStatus is the session controller's single source of truth about the
// wallet lifecycle.
type WalletStatus int

const (
	StatusInit WalletStatus = iota
	StatusOpening
	StatusLoaded
	StatusClosed
	// StatusErrored is terminal and reachable only from StatusOpening. A
	// missing wallet file never leads here, only a wallet that exists and
	// fails to load.
	StatusErrored
)

func (s WalletStatus) String() string {
	switch s {
	case StatusInit:
		return "INIT"
	case StatusOpening:
		return "OPENING"
	case StatusLoaded:
		return "LOADED"
	case StatusClosed:
		return "CLOSED"
	case StatusErrored:
		return "ERRORED"
	default:
		return "UNKNOWN"
	}
}

// StoreOpener opens or creates wallet stores at a directory.
type StoreOpener interface {
	Exists(dbDir string) bool
	Open(dbDir string) (ports.RepoManager, error)
}

// WalletIndex is the available-wallets registry.
type WalletIndex interface {
	List() ([]domain.WalletDefinition, error)
	Get(walletUUID string) (*domain.WalletDefinition, error)
	Upsert(def domain.WalletDefinition) error
	Remove(walletUUID string) error
}

// WalletService is the session controller: it owns the wallet lifecycle
// state machine and every operation that touches key custody.
type WalletService interface {
	Status() WalletStatus
	Subscribe() <-chan WalletStatus
	RepoManager() (ports.RepoManager, error)

	Create(ctx context.Context, setup *domain.WalletSetup) error
	Open(ctx context.Context, walletUUID string) error
	Close() error
	Reset(ctx context.Context) error

	EncryptAllKeys(ctx context.Context, password, email string) error
	DecryptAllKeys(ctx context.Context, password, email string) ([]domain.Key, error)
	DecryptPrivateKey(ctx context.Context, password, email string, key *domain.Key) (string, error)
	DecryptSecret(ctx context.Context, password, email string, key *domain.Key) (string, error)
	ImportPrivateKey(ctx context.Context, secret, password, email string) error

	AddTokenAccount(ctx context.Context, currency, address string) (*domain.Account, error)
	RemoveAccount(ctx context.Context, currency, address string) error
	WalletBalance(ctx context.Context, currency string) (string, error)
	AccountTxBalance(ctx context.Context, address string) (string, error)

	GenerateWalletPasswordHash(walletUUID, password string) string
	CheckWalletPasswordHash(password, walletUUID, storedHash string) bool

	ExportWallet(ctx context.Context) ([]byte, error)
	RestoreWallet(ctx context.Context, blob []byte, walletUUID, location string) error
}

type walletService struct {
	datadir  string
	opener   StoreOpener
	index    WalletIndex
	notifier ports.Notifier

	repoManager ports.RepoManager
	walletUUID  string

	status      WalletStatus
	subscribers []chan WalletStatus
	mtx         sync.Mutex
}

// NewWalletService returns a WalletService in the INIT state.
func NewWalletService(
	datadir string,
	opener StoreOpener,
	index WalletIndex,
	notifier ports.Notifier,
) WalletService {
	return &walletService{
		datadir:  datadir,
		opener:   opener,
		index:    index,
		notifier: notifier,
		status:   StatusInit,
	}
}

func (w *walletService) Status() WalletStatus {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.status
}

// Subscribe returns a channel that receives every state transition. Slow
// subscribers miss transitions rather than blocking the session.
func (w *walletService) Subscribe() <-chan WalletStatus {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	ch := make(chan WalletStatus, 5)
	w.subscribers = append(w.subscribers, ch)
	return ch
}

func (w *walletService) RepoManager() (ports.RepoManager, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.status != StatusLoaded {
		return nil, ErrWalletNotLoaded
	}
	return w.repoManager, nil
}

func (w *walletService) setStatus(status WalletStatus) {
	w.status = status
	for _, ch := range w.subscribers {
		select {
		case ch <- status:
		default:
		}
	}
}

// Create initializes a brand new wallet store for the setup parameters and
// registers it in the available-wallets index. INIT→LOADED.
func (w *walletService) Create(
	ctx context.Context, setup *domain.WalletSetup,
) error {
	if setup == nil || setup.WalletUUID == "" {
		return ErrNullSetup
	}

	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.status == StatusLoaded || w.status == StatusOpening {
		return ErrWalletAlreadyLoaded
	}

	if setup.WalletLocation == "" {
		setup.WalletLocation = w.datadir
	}
	dbDir := walletDbDir(setup.WalletLocation, setup.WalletUUID)
	log.Debugf("creating wallet store at %s", dbDir)

	repoManager, err := w.opener.Open(dbDir)
	if err != nil {
		return err
	}

	network := "LIVE"
	if setup.TestNetwork {
		network = "TEST"
	}
	if err := w.index.Upsert(domain.WalletDefinition{
		WalletUUID:   setup.WalletUUID,
		CreationDate: cscutil.LedgerEpochNow(),
		Location:     setup.WalletLocation,
		Network:      network,
		UserEmail:    setup.UserEmail,
		PasswordHash: setup.WalletPasswordHash,
		MnemonicHash: setup.EncryptedMnemonicHash,
	}); err != nil {
		repoManager.Close()
		return fmt.Errorf("registering wallet: %w", err)
	}

	w.repoManager = repoManager
	w.walletUUID = setup.WalletUUID
	w.setStatus(StatusLoaded)
	return nil
}

// Open loads an existing wallet. INIT→OPENING→LOADED, or ERRORED when the
// store exists but cannot be loaded. A wallet that does not exist at its
// registered location is reported as domain.ErrWalletNotExist and leaves the
// state machine in INIT so that first-run creation can take over.
func (w *walletService) Open(ctx context.Context, walletUUID string) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.status == StatusLoaded || w.status == StatusOpening {
		return ErrWalletAlreadyLoaded
	}

	w.setStatus(StatusOpening)

	def, err := w.index.Get(walletUUID)
	if err != nil {
		w.setStatus(StatusInit)
		return domain.ErrWalletNotExist
	}

	dbDir := walletDbDir(def.Location, walletUUID)
	if !w.opener.Exists(dbDir) {
		w.setStatus(StatusInit)
		return domain.ErrWalletNotExist
	}

	repoManager, err := w.opener.Open(dbDir)
	if err != nil {
		w.setStatus(StatusErrored)
		return err
	}

	w.repoManager = repoManager
	w.walletUUID = walletUUID
	w.setStatus(StatusLoaded)
	return nil
}

// Close flushes the store synchronously and discards the collection handles.
// LOADED→CLOSED.
func (w *walletService) Close() error {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.status != StatusLoaded {
		return ErrWalletNotLoaded
	}

	err := w.repoManager.Close()
	w.repoManager = nil
	w.walletUUID = ""
	w.setStatus(StatusClosed)
	return err
}

// Reset clears every collection in place, keeping the wallet loaded. Used
// right before a full re-discovery.
func (w *walletService) Reset(ctx context.Context) error {
	repoManager, err := w.RepoManager()
	if err != nil {
		return err
	}

	if err := repoManager.AccountRepository().Clear(ctx); err != nil {
		return err
	}
	if err := repoManager.KeyRepository().Clear(ctx); err != nil {
		return err
	}
	if err := repoManager.TransactionRepository().Clear(ctx); err != nil {
		return err
	}
	if err := repoManager.AddressBookRepository().Clear(ctx); err != nil {
		return err
	}

	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.setStatus(StatusLoaded)
	return nil
}

// EncryptAllKeys encrypts the private key and secret of every key that is
// still in plaintext. Keys already encrypted are left untouched, the flag is
// monotonic.
func (w *walletService) EncryptAllKeys(
	ctx context.Context, password, email string,
) error {
	repoManager, err := w.RepoManager()
	if err != nil {
		return err
	}
	return encryptAllKeys(ctx, repoManager.KeyRepository(), password, email)
}

// DecryptAllKeys returns the plaintext form of every key in the wallet.
// Decryption success is defined as the decrypted secret re-deriving the
// stored public key; a mismatch on any key means the password is wrong.
func (w *walletService) DecryptAllKeys(
	ctx context.Context, password, email string,
) ([]domain.Key, error) {
	repoManager, err := w.RepoManager()
	if err != nil {
		return nil, err
	}

	keys, err := repoManager.KeyRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	decrypted := make([]domain.Key, 0, len(keys))
	for i := range keys {
		key := keys[i]
		if !key.Encrypted {
			decrypted = append(decrypted, key)
			continue
		}
		secret, err := w.DecryptSecret(ctx, password, email, &key)
		if err != nil {
			return nil, err
		}
		pair, err := keyvault.KeyPairFromSecret(secret)
		if err != nil {
			return nil, ErrWrongPassword
		}
		decrypted = append(decrypted, domain.Key{
			Address:    key.Address,
			PublicKey:  pair.PublicKey,
			PrivateKey: pair.PrivateKey,
			Secret:     pair.Secret,
			Encrypted:  false,
		})
	}
	return decrypted, nil
}

// DecryptPrivateKey decrypts one key's private key in memory. Nothing is
// written back to the store.
func (w *walletService) DecryptPrivateKey(
	ctx context.Context, password, email string, key *domain.Key,
) (string, error) {
	secret, err := w.DecryptSecret(ctx, password, email, key)
	if err != nil {
		return "", err
	}
	pair, err := keyvault.KeyPairFromSecret(secret)
	if err != nil {
		return "", ErrWrongPassword
	}
	return pair.PrivateKey, nil
}

// DecryptSecret decrypts one key's secret in memory and verifies it against
// the stored public key.
func (w *walletService) DecryptSecret(
	ctx context.Context, password, email string, key *domain.Key,
) (string, error) {
	if !key.Encrypted {
		return key.Secret, nil
	}
	secret, err := keyvault.Decrypt(keyvault.DecryptOpts{
		CypherText: key.Secret,
		Password:   password,
		Email:      email,
	})
	if err != nil {
		if errors.Is(err, keyvault.ErrCryptoFailed) {
			return "", ErrWrongPassword
		}
		return "", err
	}
	pair, err := keyvault.KeyPairFromSecret(secret)
	if err != nil || pair.PublicKey != key.PublicKey {
		return "", ErrWrongPassword
	}
	return secret, nil
}

// ImportPrivateKey adds an externally generated key to the wallet as an
// imported account (sequence −1) and immediately encrypts it.
func (w *walletService) ImportPrivateKey(
	ctx context.Context, secret, password, email string,
) error {
	repoManager, err := w.RepoManager()
	if err != nil {
		return err
	}

	pair, err := keyvault.KeyPairFromSecret(secret)
	if err != nil {
		return err
	}

	if err := repoManager.KeyRepository().Add(ctx, &domain.Key{
		Address:    pair.Address,
		PublicKey:  pair.PublicKey,
		PrivateKey: pair.PrivateKey,
		Secret:     pair.Secret,
		Encrypted:  false,
	}); err != nil && !errors.Is(err, domain.ErrDuplicateKey) {
		return err
	}

	account := domain.NewAccount(
		domain.BaseCurrency, pair.Address,
		"Imported Private Key", domain.ImportedSequence,
	)
	if err := repoManager.AccountRepository().Add(ctx, account); err != nil &&
		!errors.Is(err, domain.ErrDuplicateKey) {
		return err
	}

	if err := encryptAllKeys(
		ctx, repoManager.KeyRepository(), password, email,
	); err != nil {
		return err
	}

	w.notifier.Notify(
		"Private Key Import", "The private key import is complete.",
	)
	return nil
}

// AddTokenAccount registers a token account for an address the wallet
// already owns, reusing the base account's derivation sequence.
func (w *walletService) AddTokenAccount(
	ctx context.Context, currency, address string,
) (*domain.Account, error) {
	repoManager, err := w.RepoManager()
	if err != nil {
		return nil, err
	}

	base, err := repoManager.AccountRepository().Get(
		ctx, domain.BaseCurrency, address,
	)
	if err != nil {
		return nil, err
	}

	account := domain.NewAccount(
		currency, address, currency+" Account", base.AccountSequence,
	)
	account.Activated = base.Activated
	account.Balance = base.Balance
	if err := repoManager.AccountRepository().Add(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// RemoveAccount removes one (currency, address) account. When no account is
// left for the address, the key, the address's transactions and its address
// book entry are cascaded away with it.
func (w *walletService) RemoveAccount(
	ctx context.Context, currency, address string,
) error {
	repoManager, err := w.RepoManager()
	if err != nil {
		return err
	}

	accountRepo := repoManager.AccountRepository()
	if err := accountRepo.Remove(ctx, currency, address); err != nil {
		return err
	}

	remaining, err := accountRepo.GetAllByAddress(ctx, address)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return nil
	}

	if err := repoManager.KeyRepository().Remove(ctx, address); err != nil &&
		!errors.Is(err, domain.ErrKeyNotFound) {
		return err
	}
	if err := repoManager.TransactionRepository().RemoveAllByAddress(
		ctx, address,
	); err != nil {
		return err
	}
	if err := repoManager.AddressBookRepository().Remove(
		ctx, address,
	); err != nil && !errors.Is(err, domain.ErrAddressNotFound) {
		return err
	}
	return nil
}

// WalletBalance sums the balances of all accounts holding the currency.
func (w *walletService) WalletBalance(
	ctx context.Context, currency string,
) (string, error) {
	repoManager, err := w.RepoManager()
	if err != nil {
		return "", err
	}

	accounts, err := repoManager.AccountRepository().GetAllByCurrency(
		ctx, currency,
	)
	if err != nil {
		return "", err
	}

	total := decimal.Zero
	for _, account := range accounts {
		balance := account.Balance
		if !account.IsBaseCurrency() {
			balance = account.TokenBalance
		}
		value, err := decimal.NewFromString(balance)
		if err != nil {
			return "", fmt.Errorf(
				"account %s has malformed balance %q", account.PK, balance,
			)
		}
		total = total.Add(value)
	}
	return total.String(), nil
}

// AccountTxBalance replays the address's validated transaction history and
// returns the resulting balance. Used as a consistency check against the
// ledger-reported balance.
func (w *walletService) AccountTxBalance(
	ctx context.Context, address string,
) (string, error) {
	repoManager, err := w.RepoManager()
	if err != nil {
		return "", err
	}

	txs, err := repoManager.TransactionRepository().GetAllByAddress(
		ctx, address,
	)
	if err != nil {
		return "", err
	}

	total := decimal.Zero
	for _, tx := range txs {
		amount, err := decimal.NewFromString(tx.Amount)
		if err != nil {
			continue
		}
		if tx.Account == address {
			total = total.Sub(amount)
			if fee, err := decimal.NewFromString(tx.Fee); err == nil {
				total = total.Sub(fee)
			}
		} else if tx.Destination == address {
			total = total.Add(amount)
		}
	}
	return total.String(), nil
}

// GenerateWalletPasswordHash derives the stored password verifier:
// HMAC-SHA256 keyed by the password over the wallet identifier.
func (w *walletService) GenerateWalletPasswordHash(
	walletUUID, password string,
) string {
	mac := hmac.New(sha256.New, []byte(password))
	mac.Write([]byte(walletUUID))
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckWalletPasswordHash verifies a password attempt against the stored
// verifier.
func (w *walletService) CheckWalletPasswordHash(
	password, walletUUID, storedHash string,
) bool {
	computed := w.GenerateWalletPasswordHash(walletUUID, password)
	return hmac.Equal([]byte(computed), []byte(storedHash))
}

// ExportWallet dumps the whole wallet as a compressed backup blob.
func (w *walletService) ExportWallet(ctx context.Context) ([]byte, error) {
	repoManager, err := w.RepoManager()
	if err != nil {
		return nil, err
	}
	return repoManager.Export()
}

// RestoreWallet replaces the content of the wallet identified by walletUUID
// with the backup blob, creating the wallet store first when it does not
// exist at the target location.
func (w *walletService) RestoreWallet(
	ctx context.Context, blob []byte, walletUUID, location string,
) error {
	if location == "" {
		location = w.datadir
	}

	if err := w.Open(ctx, walletUUID); err != nil {
		if !errors.Is(err, domain.ErrWalletNotExist) {
			return err
		}
		log.Debug("no wallet to restore into, creating a new one")
		if err := w.Create(ctx, &domain.WalletSetup{
			WalletUUID:     walletUUID,
			WalletLocation: location,
		}); err != nil {
			return err
		}
	}

	repoManager, err := w.RepoManager()
	if err != nil {
		return err
	}
	if err := repoManager.Import(blob); err != nil {
		return err
	}
	return w.Close()
}

func walletDbDir(location, walletUUID string) string {
	return filepath.Join(location, walletUUID)
}

// encryptAllKeys is shared between the session controller and the discovery
// engine, which encrypts the keys it finds at the end of a scan. Once a
// key's flag is set its ciphertext is never touched again.
func encryptAllKeys(
	ctx context.Context, keyRepo domain.KeyRepository, password, email string,
) error {
	keys, err := keyRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	for i := range keys {
		key := keys[i]
		if key.Encrypted {
			continue
		}
		encryptedPrivKey, err := keyvault.Encrypt(keyvault.EncryptOpts{
			PlainText: key.PrivateKey,
			Password:  password,
			Email:     email,
		})
		if err != nil {
			return err
		}
		encryptedSecret, err := keyvault.Encrypt(keyvault.EncryptOpts{
			PlainText: key.Secret,
			Password:  password,
			Email:     email,
		})
		if err != nil {
			return err
		}
		key.PrivateKey = encryptedPrivKey
		key.Secret = encryptedSecret
		key.Encrypted = true
		if err := keyRepo.Update(ctx, &key); err != nil {
			return err
		}
	}
	return nil
}
