package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casinocoin/cscwalletd/internal/core/application"
	"github.com/casinocoin/cscwalletd/internal/core/domain"
	"github.com/casinocoin/cscwalletd/internal/core/ports"
)

func newTestReconciler(
	t *testing.T, ledger *fakeLedgerClient, notifier *fakeNotifier,
) (*application.Reconciler, application.WalletService, func()) {
	t.Helper()

	walletSvc, _, cleanup := newTestWalletService(t, notifier)
	createTestWallet(t, walletSvc)

	reconciler := application.NewReconciler(walletSvc, ledger, notifier)
	return reconciler, walletSvc, func() {
		walletSvc.Close()
		cleanup()
	}
}

func drainAndStop(reconciler *application.Reconciler, ledger *fakeLedgerClient) {
	ledger.Disconnect()
	reconciler.Stop()
}

func TestPaymentEventIsIdempotent(t *testing.T) {
	ledger := newFakeLedgerClient()
	notifier := &fakeNotifier{}
	reconciler, walletSvc, cleanup := newTestReconciler(t, ledger, notifier)
	defer cleanup()

	addOwnedAccount(t, walletSvc, "CSC", "cOwned1", 0, "0")
	ledger.infoByAddress["cOwned1"] = &ports.AccountInfo{
		CSCBalance: "5", Sequence: 2,
	}

	event := ports.PaymentEvent{
		TxID:        "P1",
		Source:      "cStranger",
		Destination: "cOwned1",
		Amount:      "500000000",
		Currency:    "CSC",
		Fee:         "10000",
		Timestamp:   1234,
	}

	reconciler.Start()
	// the unvalidated observation arrives first, then the validated one, then
	// a replay of the validated one
	ledger.events <- event

	validated := event
	validated.Validated = true
	validated.LedgerIndex = 900
	validated.EngineResult = "tesSUCCESS"
	ledger.events <- validated
	ledger.events <- validated

	drainAndStop(reconciler, ledger)

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)
	count, err := repoManager.TransactionRepository().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tx, err := repoManager.TransactionRepository().Get(context.Background(), "P1")
	require.NoError(t, err)
	assert.True(t, tx.Validated)
	assert.Equal(t, int64(900), tx.InLedger)
	assert.Equal(t, domain.TxStatusValidated, tx.Status)
	assert.Equal(t, domain.TxDirectionIn, tx.Direction)

	// balance refreshed from the ledger, last writer wins
	account, err := repoManager.AccountRepository().Get(
		context.Background(), "CSC", "cOwned1",
	)
	require.NoError(t, err)
	assert.Equal(t, "500000000", account.Balance)

	// one notification per validated successful payment observation
	assert.Equal(t, 2, notifier.count())
}

func TestFailedPaymentLeavesStateUntouched(t *testing.T) {
	ledger := newFakeLedgerClient()
	notifier := &fakeNotifier{}
	reconciler, walletSvc, cleanup := newTestReconciler(t, ledger, notifier)
	defer cleanup()

	addOwnedAccount(t, walletSvc, "CSC", "cOwned1", 0, "123")
	// a refresh would overwrite the stored balance with this one
	ledger.infoByAddress["cOwned1"] = &ports.AccountInfo{CSCBalance: "99"}

	reconciler.Start()
	ledger.events <- ports.PaymentEvent{
		TxID:                "F1",
		Source:              "cStranger",
		Destination:         "cOwned1",
		Amount:              "500000000",
		Currency:            "CSC",
		Validated:           true,
		LedgerIndex:         900,
		EngineResult:        "tecPATH_DRY",
		EngineResultMessage: "Path could not send partial amount.",
	}
	drainAndStop(reconciler, ledger)

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)

	// the failed payment is not stored
	count, err := repoManager.TransactionRepository().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// the stored balance survives
	account, err := repoManager.AccountRepository().Get(
		context.Background(), "CSC", "cOwned1",
	)
	require.NoError(t, err)
	assert.Equal(t, "123", account.Balance)

	// only the failure reason is surfaced
	require.Equal(t, 1, notifier.count())
	assert.Equal(t, "Payment Transaction Error", notifier.titles[0])
	assert.Equal(t, "Path could not send partial amount.", notifier.bodies[0])
}

func TestOutgoingPaymentNotifies(t *testing.T) {
	ledger := newFakeLedgerClient()
	notifier := &fakeNotifier{}
	reconciler, walletSvc, cleanup := newTestReconciler(t, ledger, notifier)
	defer cleanup()

	addOwnedAccount(t, walletSvc, "CSC", "cOwned1", 0, "1000000000")
	ledger.infoByAddress["cOwned1"] = &ports.AccountInfo{CSCBalance: "5"}

	reconciler.Start()
	ledger.events <- ports.PaymentEvent{
		TxID:         "P4",
		Source:       "cOwned1",
		Destination:  "cStranger",
		Amount:       "250000000",
		Currency:     "CSC",
		Validated:    true,
		LedgerIndex:  901,
		EngineResult: "tesSUCCESS",
	}
	drainAndStop(reconciler, ledger)

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)
	tx, err := repoManager.TransactionRepository().Get(context.Background(), "P4")
	require.NoError(t, err)
	assert.Equal(t, domain.TxDirectionOut, tx.Direction)

	require.Equal(t, 1, notifier.count())
	assert.Equal(t, "Payment Sent", notifier.titles[0])
	assert.Contains(t, notifier.bodies[0], "cStranger")
}

func TestPaymentEventForStrangersIsIgnored(t *testing.T) {
	ledger := newFakeLedgerClient()
	reconciler, walletSvc, cleanup := newTestReconciler(t, ledger, &fakeNotifier{})
	defer cleanup()

	reconciler.Start()
	ledger.events <- ports.PaymentEvent{
		TxID:        "P2",
		Source:      "cStranger1",
		Destination: "cStranger2",
		Amount:      "1",
	}
	drainAndStop(reconciler, ledger)

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)
	count, err := repoManager.TransactionRepository().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRoundFeeEventSynthesizesTransaction(t *testing.T) {
	ledger := newFakeLedgerClient()
	notifier := &fakeNotifier{}
	reconciler, walletSvc, cleanup := newTestReconciler(t, ledger, notifier)
	defer cleanup()

	addOwnedAccount(t, walletSvc, "CSC", "cOwned1", 0, "1000")

	reconciler.Start()
	ledger.events <- ports.RoundFeeEvent{
		TxID:            "R1",
		Source:          "cFeePool",
		LedgerSequence:  400,
		Timestamp:       5000,
		TransactionType: "SetCRNRound",
		Diff: ports.LedgerDiff{
			ModifiedAccounts: []ports.ModifiedAccount{
				{
					Address:         "cOwned1",
					FinalBalance:    "1500",
					PreviousBalance: "1000",
					FinalSequence:   3,
				},
				{
					Address:         "cStranger",
					FinalBalance:    "900",
					PreviousBalance: "100",
				},
			},
		},
	}
	drainAndStop(reconciler, ledger)

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)

	// the amount is synthesized from the diff delta
	tx, err := repoManager.TransactionRepository().Get(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, "500", tx.Amount)
	assert.Equal(t, domain.TxDirectionIn, tx.Direction)
	assert.True(t, tx.Validated)
	assert.Equal(t, int64(400), tx.InLedger)

	count, err := repoManager.TransactionRepository().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	account, err := repoManager.AccountRepository().Get(
		context.Background(), "CSC", "cOwned1",
	)
	require.NoError(t, err)
	assert.Equal(t, "1500", account.Balance)
	assert.Equal(t, uint32(3), account.LastSequence)

	assert.Equal(t, 1, notifier.count())
}

func TestTrustlineEventUpdatesAccounts(t *testing.T) {
	ledger := newFakeLedgerClient()
	reconciler, walletSvc, cleanup := newTestReconciler(t, ledger, &fakeNotifier{})
	defer cleanup()

	addOwnedAccount(t, walletSvc, "CSC", "cOwned1", 0, "1000")
	addOwnedAccount(t, walletSvc, "XTK", "cOwned1", 0, "0")

	reconciler.Start()
	ledger.events <- ports.TrustlineEvent{
		TxID:        "T1",
		Account:     "cOwned1",
		Currency:    "XTK",
		LedgerIndex: 600,
		Diff: ports.LedgerDiff{
			ModifiedAccounts: []ports.ModifiedAccount{
				{
					Address:         "cOwned1",
					FinalBalance:    "800",
					PreviousBalance: "1000",
					FinalSequence:   4,
					OwnerCount:      1,
				},
			},
		},
	}
	drainAndStop(reconciler, ledger)

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)

	base, err := repoManager.AccountRepository().Get(
		context.Background(), "CSC", "cOwned1",
	)
	require.NoError(t, err)
	assert.Equal(t, "800", base.Balance)
	assert.Equal(t, uint32(1), base.OwnerCount)
	assert.Equal(t, "T1", base.LastTxID)

	token, err := repoManager.AccountRepository().Get(
		context.Background(), "XTK", "cOwned1",
	)
	require.NoError(t, err)
	assert.True(t, token.Activated)
	assert.Equal(t, int64(600), token.LastTxLedger)
	assert.Equal(t, uint32(4), token.LastSequence)
	assert.Equal(t, uint32(1), token.OwnerCount)
}

func TestMalformedEventDoesNotStopTheLoop(t *testing.T) {
	ledger := newFakeLedgerClient()
	reconciler, walletSvc, cleanup := newTestReconciler(t, ledger, &fakeNotifier{})
	defer cleanup()

	addOwnedAccount(t, walletSvc, "CSC", "cOwned1", 0, "1000")
	ledger.infoByAddress["cOwned1"] = &ports.AccountInfo{CSCBalance: "10"}

	reconciler.Start()
	// the bad diff is logged and skipped, the next event still lands
	ledger.events <- ports.RoundFeeEvent{
		TxID: "BAD",
		Diff: ports.LedgerDiff{
			ModifiedAccounts: []ports.ModifiedAccount{
				{Address: "cOwned1", FinalBalance: "oops", PreviousBalance: "1"},
			},
		},
	}
	ledger.events <- ports.PaymentEvent{
		TxID:        "P3",
		Source:      "cStranger",
		Destination: "cOwned1",
		Amount:      "1",
		Currency:    "CSC",
	}
	drainAndStop(reconciler, ledger)

	repoManager, err := walletSvc.RepoManager()
	require.NoError(t, err)
	_, err = repoManager.TransactionRepository().Get(context.Background(), "P3")
	assert.NoError(t, err)
}
