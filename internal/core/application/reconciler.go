package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
	"github.com/casinocoin/cscwalletd/internal/core/ports"
	"github.com/casinocoin/cscwalletd/pkg/cscutil"
)

// Reconciler consumes the remote event stream and folds each event into the
// local collections. Every handler is idempotent: replaying an event, or
// seeing the same transaction through both history and the live stream,
// converges to the same stored state.
type Reconciler struct {
	wallet   WalletService
	ledger   ports.LedgerClient
	notifier ports.Notifier

	quit chan struct{}
	wg   sync.WaitGroup
}

func NewReconciler(
	wallet WalletService, ledger ports.LedgerClient, notifier ports.Notifier,
) *Reconciler {
	return &Reconciler{
		wallet:   wallet,
		ledger:   ledger,
		notifier: notifier,
	}
}

// Start spawns the event loop. A malformed or failing event is logged and
// skipped, the loop itself only stops on Stop or when the stream closes.
func (r *Reconciler) Start() {
	r.quit = make(chan struct{})
	r.wg.Add(1)
	go r.eventLoop()
	log.Debug("reconciler started")
}

func (r *Reconciler) Stop() {
	close(r.quit)
	r.wg.Wait()
	log.Debug("reconciler stopped")
}

func (r *Reconciler) eventLoop() {
	defer r.wg.Done()
	events := r.ledger.Events()
	for {
		select {
		case <-r.quit:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			ctx := context.Background()
			if err := r.handleEvent(ctx, event); err != nil {
				log.WithError(err).Warnf(
					"skipping %s event", event.Type(),
				)
			}
		}
	}
}

func (r *Reconciler) handleEvent(
	ctx context.Context, event ports.RemoteEvent,
) error {
	switch e := event.(type) {
	case ports.PaymentEvent:
		return r.handlePayment(ctx, e)
	case ports.RoundFeeEvent:
		return r.handleRoundFee(ctx, e)
	case ports.TrustlineEvent:
		return r.handleTrustline(ctx, e)
	case ports.LedgerClosedEvent:
		log.Tracef(
			"ledger %d closed with %d transactions", e.LedgerIndex, e.TxnCount,
		)
		return nil
	case ports.DisconnectedEvent:
		log.Warnf("ledger stream disconnected with code %d", e.Code)
		return nil
	default:
		return fmt.Errorf("unhandled event type %s", event.Type())
	}
}

// handlePayment merges the payment into the transactions collection when
// either endpoint is wallet-owned, then refreshes the touched accounts from
// the ledger. A payment whose engine result is a failure only surfaces the
// failure reason, nothing is stored and no balance is touched.
func (r *Reconciler) handlePayment(
	ctx context.Context, event ports.PaymentEvent,
) error {
	repoManager, err := r.wallet.RepoManager()
	if err != nil {
		return err
	}
	accountRepo := repoManager.AccountRepository()

	sourceOwned, err := accountRepo.IsOwned(ctx, event.Source)
	if err != nil {
		return err
	}
	destOwned, err := accountRepo.IsOwned(ctx, event.Destination)
	if err != nil {
		return err
	}
	if !sourceOwned && !destOwned {
		return nil
	}

	if event.EngineResult != "" && event.EngineResult != "tesSUCCESS" {
		reason := event.EngineResultMessage
		if reason == "" {
			reason = event.EngineResult
		}
		r.notifier.Notify("Payment Transaction Error", reason)
		return nil
	}

	tx := &domain.Transaction{
		TxID:                event.TxID,
		Account:             event.Source,
		Destination:         event.Destination,
		Amount:              event.Amount,
		Currency:            event.Currency,
		Fee:                 event.Fee,
		Flags:               event.Flags,
		LastLedgerSequence:  event.LastLedgerSequence,
		Sequence:            event.Sequence,
		SigningPubKey:       event.SigningPubKey,
		TransactionType:     "Payment",
		Timestamp:           event.Timestamp,
		Validated:           event.Validated,
		InLedger:            event.LedgerIndex,
		EngineResult:        event.EngineResult,
		EngineResultMessage: event.EngineResultMessage,
		Memos:               cscutil.DecodeMemos(event.Memos),
		DestinationTag:      event.DestinationTag,
		InvoiceID:           event.InvoiceID,
	}
	if err := r.mergeTransaction(ctx, tx); err != nil {
		return err
	}

	if sourceOwned {
		if err := r.RefreshAccount(ctx, event.Source); err != nil {
			return err
		}
	}
	if destOwned {
		if err := r.RefreshAccount(ctx, event.Destination); err != nil {
			return err
		}
	}

	if event.Validated && event.EngineResult == "tesSUCCESS" {
		amount := event.Amount
		if event.Currency == domain.BaseCurrency {
			amount = cscutil.FormatAmount(event.Amount)
		}
		if destOwned {
			r.notifier.Notify(
				"Payment Received",
				fmt.Sprintf(
					"You received %s %s on account %s",
					amount, event.Currency, event.Destination,
				),
			)
		} else {
			r.notifier.Notify(
				"Payment Sent",
				fmt.Sprintf(
					"You sent %s %s to account %s",
					amount, event.Currency, event.Destination,
				),
			)
		}
	}
	return nil
}

// handleRoundFee synthesizes an incoming transaction per wallet-owned
// address in the event's diff, with the amount computed from the balance
// delta. The fee crediting has no natural source, so direction is forced IN.
func (r *Reconciler) handleRoundFee(
	ctx context.Context, event ports.RoundFeeEvent,
) error {
	repoManager, err := r.wallet.RepoManager()
	if err != nil {
		return err
	}
	accountRepo := repoManager.AccountRepository()

	for _, node := range event.Diff.ModifiedAccounts {
		owned, err := accountRepo.IsOwned(ctx, node.Address)
		if err != nil {
			return err
		}
		if !owned {
			continue
		}

		final, err := decimal.NewFromString(node.FinalBalance)
		if err != nil {
			return fmt.Errorf("malformed final balance %q: %w", node.FinalBalance, err)
		}
		previous, err := decimal.NewFromString(node.PreviousBalance)
		if err != nil {
			return fmt.Errorf("malformed previous balance %q: %w", node.PreviousBalance, err)
		}
		delta := final.Sub(previous)
		if !delta.IsPositive() {
			continue
		}

		tx := &domain.Transaction{
			TxID:            event.TxID,
			Account:         event.Source,
			Destination:     node.Address,
			Amount:          delta.String(),
			Currency:        domain.BaseCurrency,
			Fee:             event.Fee,
			TransactionType: event.TransactionType,
			Timestamp:       event.Timestamp,
			Direction:       domain.TxDirectionIn,
			Validated:       true,
			Status:          domain.TxStatusValidated,
			InLedger:        event.LedgerSequence,
			EngineResult:    "tesSUCCESS",
		}
		if err := r.mergeTransaction(ctx, tx); err != nil {
			return err
		}

		account, err := accountRepo.Get(ctx, domain.BaseCurrency, node.Address)
		if err != nil {
			return err
		}
		account.Balance = node.FinalBalance
		account.Activated = true
		account.LastSequence = node.FinalSequence
		account.LastTxID = event.TxID
		account.LastTxLedger = event.LedgerSequence
		if err := accountRepo.Update(ctx, account); err != nil {
			return err
		}

		r.notifier.Notify(
			"Round Fee Received",
			fmt.Sprintf(
				"You received %s CSC on account %s",
				cscutil.FormatAmount(delta.String()), node.Address,
			),
		)
	}
	return nil
}

// handleTrustline updates the base account fields from the event's diff and
// bumps the token account's bookkeeping.
func (r *Reconciler) handleTrustline(
	ctx context.Context, event ports.TrustlineEvent,
) error {
	repoManager, err := r.wallet.RepoManager()
	if err != nil {
		return err
	}
	accountRepo := repoManager.AccountRepository()

	owned, err := accountRepo.IsOwned(ctx, event.Account)
	if err != nil {
		return err
	}
	if !owned {
		return nil
	}

	var diffNode *ports.ModifiedAccount
	for i, node := range event.Diff.ModifiedAccounts {
		if node.Address != event.Account {
			continue
		}
		diffNode = &event.Diff.ModifiedAccounts[i]
		account, err := accountRepo.Get(ctx, domain.BaseCurrency, node.Address)
		if err != nil {
			return err
		}
		account.Balance = node.FinalBalance
		account.OwnerCount = node.OwnerCount
		account.LastSequence = node.FinalSequence
		account.LastTxID = event.TxID
		account.LastTxLedger = event.LedgerIndex
		if err := accountRepo.Update(ctx, account); err != nil {
			return err
		}
	}

	tokenAccount, err := accountRepo.Get(ctx, event.Currency, event.Account)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil
		}
		return err
	}
	tokenAccount.Activated = true
	tokenAccount.LastTxID = event.TxID
	tokenAccount.LastTxLedger = event.LedgerIndex
	if diffNode != nil {
		tokenAccount.LastSequence = diffNode.FinalSequence
		tokenAccount.OwnerCount = diffNode.OwnerCount
	}
	return accountRepo.Update(ctx, tokenAccount)
}

// MergeHistoryTx folds one entry of an address's fetched history into the
// transactions collection. Used by discovery when replaying an account's
// past.
func (r *Reconciler) MergeHistoryTx(
	ctx context.Context, entry ports.HistoryTx,
) error {
	amount := entry.DeliveredAmount
	fee := entry.Fee
	if entry.Currency == domain.BaseCurrency || entry.Currency == "" {
		if drops, err := cscutil.CSCToDrops(entry.DeliveredAmount); err == nil {
			amount = drops
		}
	}
	if drops, err := cscutil.CSCToDrops(entry.Fee); err == nil {
		fee = drops
	}

	currency := entry.Currency
	if currency == "" {
		currency = domain.BaseCurrency
	}

	tx := &domain.Transaction{
		TxID:            entry.ID,
		Account:         entry.Source,
		Destination:     entry.Destination,
		Amount:          amount,
		Currency:        currency,
		Fee:             fee,
		Sequence:        entry.Sequence,
		TransactionType: entry.Type,
		Timestamp:       entry.Timestamp,
		Validated:       true,
		InLedger:        entry.LedgerVersion,
		EngineResult:    "tesSUCCESS",
		Memos:           cscutil.DecodeMemos(entry.Memos),
		DestinationTag:  entry.DestinationTag,
		InvoiceID:       entry.InvoiceID,
	}
	return r.mergeTransaction(ctx, tx)
}

// mergeTransaction inserts a transaction or, when its id is already stored,
// updates only the mutable fields. Immutable fields of the stored record win
// over the incoming copy, so replays and out-of-order observations cannot
// rewrite history.
func (r *Reconciler) mergeTransaction(
	ctx context.Context, tx *domain.Transaction,
) error {
	repoManager, err := r.wallet.RepoManager()
	if err != nil {
		return err
	}
	txRepo := repoManager.TransactionRepository()

	if tx.Direction == "" {
		direction, err := r.classifyDirection(ctx, tx)
		if err != nil {
			return err
		}
		tx.Direction = direction
	}
	if tx.Status == "" {
		tx.Status = statusFor(tx)
	}

	stored, err := txRepo.Get(ctx, tx.TxID)
	if err != nil {
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			return err
		}
		return txRepo.Add(ctx, tx)
	}

	stored.Validated = tx.Validated
	stored.Status = tx.Status
	stored.InLedger = tx.InLedger
	stored.EngineResult = tx.EngineResult
	stored.EngineResultMessage = tx.EngineResultMessage
	if tx.Timestamp != 0 {
		stored.Timestamp = tx.Timestamp
	}
	return txRepo.Update(ctx, stored)
}

func (r *Reconciler) classifyDirection(
	ctx context.Context, tx *domain.Transaction,
) (domain.TxDirection, error) {
	repoManager, err := r.wallet.RepoManager()
	if err != nil {
		return "", err
	}
	accountRepo := repoManager.AccountRepository()

	sourceOwned, err := accountRepo.IsOwned(ctx, tx.Account)
	if err != nil {
		return "", err
	}
	destOwned, err := accountRepo.IsOwned(ctx, tx.Destination)
	if err != nil {
		return "", err
	}

	switch {
	case sourceOwned && destOwned:
		return domain.TxDirectionBoth, nil
	case sourceOwned:
		return domain.TxDirectionOut, nil
	default:
		return domain.TxDirectionIn, nil
	}
}

func statusFor(tx *domain.Transaction) domain.TxStatus {
	switch {
	case tx.Validated:
		return domain.TxStatusValidated
	case tx.EngineResult != "" && tx.EngineResult != "tesSUCCESS":
		return domain.TxStatusError
	case tx.Direction == domain.TxDirectionIn:
		return domain.TxStatusReceived
	default:
		return domain.TxStatusSend
	}
}

// RefreshAccount re-reads the ledger state of every account at the address
// and overwrites the stored copy, last writer wins. The base currency
// account is always refreshed even when the trigger was a token event.
func (r *Reconciler) RefreshAccount(ctx context.Context, address string) error {
	repoManager, err := r.wallet.RepoManager()
	if err != nil {
		return err
	}
	accountRepo := repoManager.AccountRepository()

	info, err := r.ledger.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, ports.ErrAccountNotFound) {
			return nil
		}
		return err
	}

	account, err := accountRepo.Get(ctx, domain.BaseCurrency, address)
	if err != nil {
		return err
	}
	if drops, err := cscutil.CSCToDrops(info.CSCBalance); err == nil {
		account.Balance = drops
	}
	account.Activated = true
	account.OwnerCount = info.OwnerCount
	account.LastSequence = info.Sequence
	account.LastTxID = info.LastTxID
	account.LastTxLedger = info.LastTxLedger
	if err := accountRepo.Update(ctx, account); err != nil {
		return err
	}

	trustlines, err := r.ledger.GetTrustlines(ctx, address)
	if err != nil {
		return err
	}
	for _, line := range trustlines {
		tokenAccount, err := accountRepo.Get(ctx, line.Currency, address)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				continue
			}
			return err
		}
		tokenAccount.TokenBalance = tokenUnitsToDrops(line.Balance)
		tokenAccount.Activated = true
		if err := accountRepo.Update(ctx, tokenAccount); err != nil {
			return err
		}
	}
	return nil
}
