package application_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/casinocoin/cscwalletd/internal/core/application"
	"github.com/casinocoin/cscwalletd/internal/core/domain"
	"github.com/casinocoin/cscwalletd/internal/core/ports"
	dbbadger "github.com/casinocoin/cscwalletd/internal/infrastructure/storage/db/badger"
	"github.com/casinocoin/cscwalletd/internal/infrastructure/walletindex"
)

// **** Ledger client ****

type fakeLedgerClient struct {
	mtx sync.Mutex

	infoByAddress       map[string]*ports.AccountInfo
	trustlinesByAddress map[string][]ports.Trustline
	historyByAddress    map[string][]ports.HistoryTx
	events              chan ports.RemoteEvent

	lookups []string
}

func newFakeLedgerClient() *fakeLedgerClient {
	return &fakeLedgerClient{
		infoByAddress:       make(map[string]*ports.AccountInfo),
		trustlinesByAddress: make(map[string][]ports.Trustline),
		historyByAddress:    make(map[string][]ports.HistoryTx),
		events:              make(chan ports.RemoteEvent, 16),
	}
}

func (f *fakeLedgerClient) Connect(ctx context.Context) error { return nil }

func (f *fakeLedgerClient) Disconnect() error {
	close(f.events)
	return nil
}

func (f *fakeLedgerClient) GetAccountInfo(
	ctx context.Context, address string,
) (*ports.AccountInfo, error) {
	f.mtx.Lock()
	f.lookups = append(f.lookups, address)
	info, ok := f.infoByAddress[address]
	f.mtx.Unlock()
	if !ok {
		return nil, ports.ErrAccountNotFound
	}
	return info, nil
}

func (f *fakeLedgerClient) GetBalances(
	ctx context.Context, address string,
) ([]ports.Balance, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	info, ok := f.infoByAddress[address]
	if !ok {
		return nil, ports.ErrAccountNotFound
	}
	balances := []ports.Balance{
		{Currency: domain.BaseCurrency, Value: info.CSCBalance},
	}
	for _, line := range f.trustlinesByAddress[address] {
		balances = append(balances, ports.Balance{
			Currency:     line.Currency,
			Value:        line.Balance,
			Counterparty: line.Counterparty,
		})
	}
	return balances, nil
}

func (f *fakeLedgerClient) GetTrustlines(
	ctx context.Context, address string,
) ([]ports.Trustline, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.trustlinesByAddress[address], nil
}

func (f *fakeLedgerClient) GetTransactions(
	ctx context.Context, address string, opts ports.GetTransactionsOpts,
) ([]ports.HistoryTx, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.historyByAddress[address], nil
}

func (f *fakeLedgerClient) Submit(
	ctx context.Context, txBlob string,
) (string, error) {
	return "tesSUCCESS", nil
}

func (f *fakeLedgerClient) Events() <-chan ports.RemoteEvent {
	return f.events
}

func (f *fakeLedgerClient) lookupCount() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return len(f.lookups)
}

// **** Notifier ****

type fakeNotifier struct {
	mtx    sync.Mutex
	titles []string
	bodies []string
}

func (f *fakeNotifier) Notify(title, body string) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.titles = append(f.titles, title)
	f.bodies = append(f.bodies, body)
}

func (f *fakeNotifier) count() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return len(f.titles)
}

// **** Wiring helpers ****

func newTestWalletService(
	t *testing.T, notifier ports.Notifier,
) (application.WalletService, string, func()) {
	t.Helper()

	datadir, err := os.MkdirTemp("", "cscwalletd-test-*")
	require.NoError(t, err)

	walletSvc := application.NewWalletService(
		datadir,
		dbbadger.NewStoreOpener(0),
		walletindex.New(datadir),
		notifier,
	)
	cleanup := func() { os.RemoveAll(datadir) }
	return walletSvc, datadir, cleanup
}

func createTestWallet(
	t *testing.T, walletSvc application.WalletService,
) string {
	t.Helper()

	walletUUID := uuid.NewString()
	require.NoError(t, walletSvc.Create(context.Background(), &domain.WalletSetup{
		WalletUUID: walletUUID,
	}))
	return walletUUID
}

func addOwnedAccount(
	t *testing.T,
	walletSvc application.WalletService,
	currency, address string,
	sequence int,
	balance string,
) {
	t.Helper()

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)

	account := domain.NewAccount(currency, address, "test", sequence)
	account.Balance = balance
	account.Activated = true
	require.NoError(
		t, repoManager.AccountRepository().Add(context.Background(), account),
	)
}
