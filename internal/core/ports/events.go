package ports

import "github.com/casinocoin/cscwalletd/pkg/cscutil"

// EventType tags the variants of RemoteEvent.
type EventType int

const (
	EventTypePayment EventType = iota
	EventTypeRoundFee
	EventTypeTrustline
	EventTypeLedgerClosed
	EventTypeDisconnected
)

func (et EventType) String() string {
	switch et {
	case EventTypePayment:
		return "Payment"
	case EventTypeRoundFee:
		return "RoundFee"
	case EventTypeTrustline:
		return "Trustline"
	case EventTypeLedgerClosed:
		return "LedgerClosed"
	case EventTypeDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// RemoteEvent is a decoded ledger stream event. Payloads are decoded once at
// the client boundary into one of the typed variants below.
type RemoteEvent interface {
	Type() EventType
}

// ModifiedAccount is one modified-account node of an event's ledger-state
// diff. Balances are in drops.
type ModifiedAccount struct {
	Address         string
	FinalBalance    string
	PreviousBalance string
	FinalSequence   uint32
	OwnerCount      uint32
}

// LedgerDiff is the relevant slice of an event's meta: the account-root
// entries the event modified.
type LedgerDiff struct {
	ModifiedAccounts []ModifiedAccount
}

// PaymentEvent is a payment touching some address; whether the wallet cares
// is decided by the reconciler. Amount is in drops for the base currency,
// token units otherwise.
type PaymentEvent struct {
	TxID                string
	Source              string
	Destination         string
	Amount              string
	Currency            string
	Fee                 string
	Flags               uint32
	Sequence            uint32
	LastLedgerSequence  int64
	SigningPubKey       string
	Timestamp           int64
	Memos               []cscutil.RawMemo
	DestinationTag      *uint32
	InvoiceID           string
	Validated           bool
	LedgerIndex         int64
	EngineResult        string
	EngineResultMessage string
}

func (e PaymentEvent) Type() EventType { return EventTypePayment }

// RoundFeeEvent is a round-fee distribution. It carries no explicit amount:
// per-address deltas live in the Diff.
type RoundFeeEvent struct {
	TxID            string
	Source          string
	Fee             string
	LedgerSequence  int64
	Timestamp       int64
	TransactionType string
	Diff            LedgerDiff
}

func (e RoundFeeEvent) Type() EventType { return EventTypeRoundFee }

// TrustlineEvent is a trust-line change for an address and currency.
type TrustlineEvent struct {
	TxID        string
	Account     string
	Currency    string
	LedgerIndex int64
	Timestamp   int64
	Diff        LedgerDiff
}

func (e TrustlineEvent) Type() EventType { return EventTypeTrustline }

// LedgerClosedEvent announces a newly validated ledger.
type LedgerClosedEvent struct {
	LedgerIndex int64
	LedgerHash  string
	LedgerTime  int64
	TxnCount    int
}

func (e LedgerClosedEvent) Type() EventType { return EventTypeLedgerClosed }

// DisconnectedEvent reports the stream connection dropping.
type DisconnectedEvent struct {
	Code int
}

func (e DisconnectedEvent) Type() EventType { return EventTypeDisconnected }
