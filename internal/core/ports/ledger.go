package ports

import (
	"context"
	"errors"

	"github.com/casinocoin/cscwalletd/pkg/cscutil"
)

var (
	// ErrAccountNotFound is returned by GetAccountInfo for an address the
	// ledger has never seen. Discovery counts these toward its gap limit,
	// everything else is treated as transient.
	ErrAccountNotFound = errors.New("account not found on the ledger")
	// ErrTransient wraps network and timeout failures. It must never be
	// mistaken for ErrAccountNotFound or the gap scan would terminate on a
	// flaky connection.
	ErrTransient = errors.New("transient ledger connection error")
	// ErrNotConnected ...
	ErrNotConnected = errors.New("not connected to a ledger server")
)

// AccountInfo is the authoritative ledger state of one address.
type AccountInfo struct {
	// CSCBalance is expressed in coins, not drops.
	CSCBalance   string
	Sequence     uint32
	OwnerCount   uint32
	LastTxID     string
	LastTxLedger int64
}

// Balance is one currency position of an address.
type Balance struct {
	Currency     string
	Value        string
	Counterparty string
}

// Trustline is a token-holding relationship between an address and an
// issuer.
type Trustline struct {
	Currency     string
	Counterparty string
	Balance      string
	Limit        string
}

// HistoryTx is one entry of an address's transaction history as reported by
// the ledger. Amounts are in coins for the base currency and in token units
// otherwise; the timestamp is in ledger epoch seconds.
type HistoryTx struct {
	ID              string
	Type            string
	Source          string
	Destination     string
	DeliveredAmount string
	Currency        string
	Fee             string
	Sequence        uint32
	Timestamp       int64
	LedgerVersion   int64
	IndexInLedger   int
	Memos           []cscutil.RawMemo
	DestinationTag  *uint32
	InvoiceID       string
}

// GetTransactionsOpts ...
type GetTransactionsOpts struct {
	EarliestFirst bool
}

// LedgerClient is the remote ledger collaborator. Implementations own
// connection management, timeouts and retries; callers only distinguish
// ErrAccountNotFound from ErrTransient.
type LedgerClient interface {
	Connect(ctx context.Context) error
	Disconnect() error
	GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error)
	GetBalances(ctx context.Context, address string) ([]Balance, error)
	GetTrustlines(ctx context.Context, address string) ([]Trustline, error)
	GetTransactions(ctx context.Context, address string, opts GetTransactionsOpts) ([]HistoryTx, error)
	Submit(ctx context.Context, txBlob string) (engineResult string, err error)
	// Events is the live stream of remote ledger events. The channel is
	// closed on Disconnect.
	Events() <-chan RemoteEvent
}
