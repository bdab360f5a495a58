package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casinocoin/cscwalletd/internal/core/application"
	"github.com/casinocoin/cscwalletd/internal/core/domain"
	"github.com/casinocoin/cscwalletd/internal/core/ports"
	"github.com/casinocoin/cscwalletd/pkg/keyvault"
)

func deriveTestAddress(t *testing.T, sequence int) string {
	t.Helper()
	pair, err := keyvault.DeriveKeyPair(keyvault.DeriveKeyPairOpts{
		Mnemonic: testMnemonic,
		Sequence: sequence,
	})
	require.NoError(t, err)
	return pair.Address
}

func newTestDiscovery(
	t *testing.T, ledger *fakeLedgerClient,
) (application.DiscoveryService, application.WalletService, func()) {
	t.Helper()

	notifier := &fakeNotifier{}
	walletSvc, _, cleanup := newTestWalletService(t, notifier)
	createTestWallet(t, walletSvc)

	reconciler := application.NewReconciler(walletSvc, ledger, notifier)
	discoverySvc := application.NewDiscoveryService(
		walletSvc, ledger, reconciler, 10000,
	)
	return discoverySvc, walletSvc, func() {
		walletSvc.Close()
		cleanup()
	}
}

func TestDiscoverStopsAfterGapLimit(t *testing.T) {
	ledger := newFakeLedgerClient()
	// active accounts at sequences 0, 3 and 7
	for _, seq := range []int{0, 3, 7} {
		ledger.infoByAddress[deriveTestAddress(t, seq)] = &ports.AccountInfo{
			CSCBalance: "10",
			Sequence:   5,
			OwnerCount: 0,
		}
	}

	discoverySvc, walletSvc, cleanup := newTestDiscovery(t, ledger)
	defer cleanup()

	report, err := discoverySvc.Discover(
		context.Background(), application.DiscoverOpts{
			Mnemonic: testMnemonic,
			Password: "pass",
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, report.AccountsFound)
	assert.False(t, report.Placeholder)
	// the miss counter resets on the hit at 7, so the scan walks ten more
	// sequences (8..17) before giving up
	assert.Equal(t, 17, report.LastSequence)
	assert.Equal(t, 18, ledger.lookupCount())

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)
	accounts, err := repoManager.AccountRepository().GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, len(accounts))

	// no keys for the discarded placeholder sequences, and all encrypted
	keys, err := repoManager.KeyRepository().GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, len(keys))
	for _, key := range keys {
		assert.True(t, key.Encrypted)
	}

	maxSeq, err := repoManager.AccountRepository().MaxSequence(
		context.Background(),
	)
	require.NoError(t, err)
	assert.Equal(t, 7, maxSeq)
}

func TestDiscoverEmptyWalletCommitsPlaceholder(t *testing.T) {
	ledger := newFakeLedgerClient()
	discoverySvc, walletSvc, cleanup := newTestDiscovery(t, ledger)
	defer cleanup()

	report, err := discoverySvc.Discover(
		context.Background(), application.DiscoverOpts{
			Mnemonic: testMnemonic,
			Password: "pass",
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 0, report.AccountsFound)
	assert.True(t, report.Placeholder)
	assert.Equal(t, 10, ledger.lookupCount())

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)
	account, err := repoManager.AccountRepository().Get(
		context.Background(), domain.BaseCurrency, deriveTestAddress(t, 0),
	)
	require.NoError(t, err)
	assert.Equal(t, 0, account.AccountSequence)
	assert.False(t, account.Activated)
}

func TestDiscoverReplaysHistory(t *testing.T) {
	ledger := newFakeLedgerClient()
	address := deriveTestAddress(t, 0)
	ledger.infoByAddress[address] = &ports.AccountInfo{CSCBalance: "25"}
	ledger.historyByAddress[address] = []ports.HistoryTx{
		{
			ID:              "H1",
			Type:            "Payment",
			Source:          "cSomeoneElse",
			Destination:     address,
			DeliveredAmount: "25",
			Currency:        "CSC",
			Fee:             "0.0001",
			Timestamp:       100,
			LedgerVersion:   50,
		},
	}

	discoverySvc, walletSvc, cleanup := newTestDiscovery(t, ledger)
	defer cleanup()

	_, err := discoverySvc.Discover(
		context.Background(), application.DiscoverOpts{
			Mnemonic: testMnemonic,
			Password: "pass",
		},
	)
	require.NoError(t, err)

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)
	tx, err := repoManager.TransactionRepository().Get(context.Background(), "H1")
	require.NoError(t, err)
	assert.Equal(t, "2500000000", tx.Amount)
	assert.Equal(t, domain.TxDirectionIn, tx.Direction)
	assert.Equal(t, domain.TxStatusValidated, tx.Status)
}

func TestDiscoverMoreStartsPastMaxSequence(t *testing.T) {
	ledger := newFakeLedgerClient()
	ledger.infoByAddress[deriveTestAddress(t, 0)] = &ports.AccountInfo{
		CSCBalance: "1",
	}

	discoverySvc, walletSvc, cleanup := newTestDiscovery(t, ledger)
	defer cleanup()

	addOwnedAccount(t, walletSvc, "CSC", deriveTestAddress(t, 0), 0, "0")

	report, err := discoverySvc.DiscoverMore(
		context.Background(), application.DiscoverOpts{
			Mnemonic: testMnemonic,
			Password: "pass",
		},
	)
	require.NoError(t, err)

	// the scan starts at sequence 1 and never re-probes sequence 0
	assert.Equal(t, 0, report.AccountsFound)
	assert.False(t, report.Placeholder)
	assert.Equal(t, 10, report.LastSequence)
	assert.Equal(t, 10, ledger.lookupCount())
}
