package domain

import "github.com/casinocoin/cscwalletd/pkg/cscutil"

// TxStatus tracks a transaction through its local lifecycle.
type TxStatus string

const (
	TxStatusNew       TxStatus = "txNEW"
	TxStatusSend      TxStatus = "txSEND"
	TxStatusError     TxStatus = "txERROR"
	TxStatusReceived  TxStatus = "txRECEIVED"
	TxStatusValidated TxStatus = "txVALIDATED"
)

// TxDirection classifies a transaction relative to wallet ownership of its
// endpoints.
type TxDirection string

const (
	// TxDirectionIn — destination owned, source not owned.
	TxDirectionIn TxDirection = "IN"
	// TxDirectionOut — source owned, destination not owned.
	TxDirectionOut TxDirection = "OUT"
	// TxDirectionBoth — both endpoints owned; the source address is the
	// owning account for display purposes.
	TxDirectionBoth TxDirection = "BOTH"
)

// Transaction is one observed ledger event affecting a wallet-owned address.
// TxID is globally unique in the store: a second observation of the same id
// is a merge, never a second record. Timestamp is in ledger epoch seconds.
type Transaction struct {
	TxID                string
	Account             string
	Destination         string
	Amount              string
	Currency            string
	Fee                 string
	Flags               uint32
	LastLedgerSequence  int64
	Sequence            uint32
	SigningPubKey       string
	TransactionType     string
	TxnSignature        string
	Timestamp           int64
	Direction           TxDirection
	Validated           bool
	Status              TxStatus
	InLedger            int64
	EngineResult        string
	EngineResultMessage string
	Memos               []cscutil.Memo
	DestinationTag      *uint32
	InvoiceID           string
}
