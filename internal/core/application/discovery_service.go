package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
	"github.com/casinocoin/cscwalletd/internal/core/ports"
	"github.com/casinocoin/cscwalletd/pkg/cscutil"
	"github.com/casinocoin/cscwalletd/pkg/keyvault"
)

// gapLimit is the number of consecutive unused derivation sequences after
// which a scan stops looking further.
const gapLimit = 10

// DiscoveryService derives addresses from the recovery mnemonic and probes
// the ledger for their activity, committing the accounts it finds.
type DiscoveryService interface {
	// Discover runs a full scan from sequence 0. The store must hold no
	// accounts for the scan to make sense; callers reset first.
	Discover(ctx context.Context, opts DiscoverOpts) (*ScanReport, error)
	// DiscoverMore extends a previous scan, starting right after the
	// highest derived sequence already in the store.
	DiscoverMore(ctx context.Context, opts DiscoverOpts) (*ScanReport, error)
}

// DiscoverOpts ...
type DiscoverOpts struct {
	Mnemonic []string
	Password string
	Email    string
}

func (o DiscoverOpts) validate() error {
	if len(o.Mnemonic) <= 0 {
		return keyvault.ErrNullMnemonic
	}
	if !keyvault.IsMnemonicValid(o.Mnemonic) {
		return keyvault.ErrInvalidMnemonic
	}
	if o.Password == "" {
		return keyvault.ErrNullPassword
	}
	return nil
}

// ScanReport summarizes one discovery run.
type ScanReport struct {
	AccountsFound int
	LastSequence  int
	Placeholder   bool
}

type discoveryService struct {
	wallet     WalletService
	ledger     ports.LedgerClient
	reconciler *Reconciler
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// NewDiscoveryService builds a discovery engine that paces its ledger
// lookups with the given limiter.
func NewDiscoveryService(
	wallet WalletService,
	ledger ports.LedgerClient,
	reconciler *Reconciler,
	lookupsPerSecond float64,
) DiscoveryService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ledger lookups",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("%s breaker moved from %s to %s", name, from, to)
		},
	})
	return &discoveryService{
		wallet:     wallet,
		ledger:     ledger,
		reconciler: reconciler,
		limiter:    rate.NewLimiter(rate.Limit(lookupsPerSecond), 1),
		breaker:    breaker,
	}
}

// lookup is the breaker-mediated result of one account probe. A missing
// account is a successful lookup, only transient failures count against the
// breaker.
type lookup struct {
	found bool
	info  *ports.AccountInfo
}

func (d *discoveryService) Discover(
	ctx context.Context, opts DiscoverOpts,
) (*ScanReport, error) {
	return d.scan(ctx, opts, 0)
}

func (d *discoveryService) DiscoverMore(
	ctx context.Context, opts DiscoverOpts,
) (*ScanReport, error) {
	repoManager, err := d.wallet.RepoManager()
	if err != nil {
		return nil, err
	}
	maxSeq, err := repoManager.AccountRepository().MaxSequence(ctx)
	if err != nil {
		return nil, err
	}
	return d.scan(ctx, opts, maxSeq+1)
}

// scan walks derivation sequences from fromSequence until gapLimit
// consecutive sequences come back unused. Keys for missed sequences are
// buffered, not committed: a hit discards every buffered placeholder and
// resets the miss counter, so the committed key set has no interior holes.
// A full scan with no hit at all commits sequence 0 as a placeholder so the
// wallet still has a funding address.
func (d *discoveryService) scan(
	ctx context.Context, opts DiscoverOpts, fromSequence int,
) (*ScanReport, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	repoManager, err := d.wallet.RepoManager()
	if err != nil {
		return nil, err
	}

	report := &ScanReport{LastSequence: fromSequence - 1}
	misses := 0
	var buffered []*keyvault.KeyPair

	for seq := fromSequence; misses < gapLimit; seq++ {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("%w: %v", ErrScanIncomplete, err)
		}
		if err := d.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("%w: %v", ErrScanIncomplete, err)
		}

		pair, err := keyvault.DeriveKeyPair(keyvault.DeriveKeyPairOpts{
			Mnemonic: opts.Mnemonic,
			Sequence: seq,
		})
		if err != nil {
			return report, err
		}

		result, err := d.probe(ctx, pair.Address)
		if err != nil {
			return report, fmt.Errorf("%w: %v", ErrScanIncomplete, err)
		}

		if !result.found {
			misses++
			buffered = append(buffered, pair)
			log.Tracef(
				"sequence %d (%s) unused, %d/%d misses",
				seq, pair.Address, misses, gapLimit,
			)
			report.LastSequence = seq
			continue
		}

		misses = 0
		buffered = buffered[:0]
		if err := d.commitHit(ctx, repoManager, pair, seq, result.info); err != nil {
			return report, err
		}
		report.AccountsFound++
		report.LastSequence = seq
		log.Debugf("discovered active account %s at sequence %d", pair.Address, seq)
	}

	if report.AccountsFound == 0 && fromSequence == 0 && len(buffered) > 0 {
		if err := d.commitPlaceholder(
			ctx, repoManager, buffered[0],
		); err != nil {
			return report, err
		}
		report.Placeholder = true
	}

	if err := encryptAllKeys(
		ctx, repoManager.KeyRepository(), opts.Password, opts.Email,
	); err != nil {
		return report, err
	}
	if err := repoManager.Flush(); err != nil {
		return report, err
	}
	return report, nil
}

func (d *discoveryService) probe(
	ctx context.Context, address string,
) (*lookup, error) {
	result, err := d.breaker.Execute(func() (interface{}, error) {
		info, err := d.ledger.GetAccountInfo(ctx, address)
		if err != nil {
			if errors.Is(err, ports.ErrAccountNotFound) {
				return &lookup{found: false}, nil
			}
			return nil, err
		}
		return &lookup{found: true, info: info}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*lookup), nil
}

// commitHit writes the key and the base currency account for an active
// address, then pulls in its per currency balances and full validated
// history.
// Re-committing an address already in the store is a no-op on the unique
// keys, so a scan can safely overlap previously discovered ground.
func (d *discoveryService) commitHit(
	ctx context.Context,
	repoManager ports.RepoManager,
	pair *keyvault.KeyPair,
	sequence int,
	info *ports.AccountInfo,
) error {
	if err := addKeyPair(ctx, repoManager.KeyRepository(), pair); err != nil {
		return err
	}

	account := domain.NewAccount(
		domain.BaseCurrency, pair.Address,
		"Account "+strconv.Itoa(sequence+1), sequence,
	)
	account.Activated = true
	if drops, err := cscutil.CSCToDrops(info.CSCBalance); err == nil {
		account.Balance = drops
	}
	account.OwnerCount = info.OwnerCount
	account.LastSequence = info.Sequence
	account.LastTxID = info.LastTxID
	account.LastTxLedger = info.LastTxLedger
	if err := repoManager.AccountRepository().Add(
		ctx, account,
	); err != nil && !errors.Is(err, domain.ErrDuplicateKey) {
		return err
	}

	balances, err := d.ledger.GetBalances(ctx, pair.Address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScanIncomplete, err)
	}
	for _, balance := range balances {
		if balance.Currency == domain.BaseCurrency {
			continue
		}
		tokenAccount := domain.NewAccount(
			balance.Currency, pair.Address, balance.Currency+" Account", sequence,
		)
		tokenAccount.Activated = true
		tokenAccount.TokenBalance = tokenUnitsToDrops(balance.Value)
		if err := repoManager.AccountRepository().Add(
			ctx, tokenAccount,
		); err != nil && !errors.Is(err, domain.ErrDuplicateKey) {
			return err
		}
	}

	history, err := d.ledger.GetTransactions(
		ctx, pair.Address, ports.GetTransactionsOpts{EarliestFirst: true},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScanIncomplete, err)
	}
	for _, tx := range history {
		if err := d.reconciler.MergeHistoryTx(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

// commitPlaceholder stores the sequence 0 key and an unactivated account so
// a freshly recovered empty wallet still exposes an address to fund.
func (d *discoveryService) commitPlaceholder(
	ctx context.Context,
	repoManager ports.RepoManager,
	pair *keyvault.KeyPair,
) error {
	if err := addKeyPair(ctx, repoManager.KeyRepository(), pair); err != nil {
		return err
	}
	account := domain.NewAccount(domain.BaseCurrency, pair.Address, "Account 1", 0)
	if err := repoManager.AccountRepository().Add(
		ctx, account,
	); err != nil && !errors.Is(err, domain.ErrDuplicateKey) {
		return err
	}
	log.Debug("scan found no activity, committed sequence 0 as placeholder")
	return nil
}

func addKeyPair(
	ctx context.Context, keyRepo domain.KeyRepository, pair *keyvault.KeyPair,
) error {
	err := keyRepo.Add(ctx, &domain.Key{
		Address:    pair.Address,
		PublicKey:  pair.PublicKey,
		PrivateKey: pair.PrivateKey,
		Secret:     pair.Secret,
		Encrypted:  false,
	})
	if err != nil && !errors.Is(err, domain.ErrDuplicateKey) {
		return err
	}
	return nil
}

// tokenUnitsToDrops stores token balances scaled like drops so that both
// balance columns share one unit.
func tokenUnitsToDrops(units string) string {
	value, err := decimal.NewFromString(units)
	if err != nil {
		return "0"
	}
	return value.Mul(decimal.New(cscutil.DropsPerCSC, 0)).Truncate(0).String()
}
