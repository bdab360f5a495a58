package wsledger

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/casinocoin/cscwalletd/internal/core/ports"
	"github.com/casinocoin/cscwalletd/pkg/cscutil"
)

// amountField decodes the two wire shapes of an amount: a bare string of
// drops for the base currency, or a {currency, value, issuer} object for
// tokens.
type amountField struct {
	Drops    string
	Currency string
	Value    string
	Issuer   string
}

func (a *amountField) UnmarshalJSON(data []byte) error {
	var drops string
	if err := json.Unmarshal(data, &drops); err == nil {
		a.Drops = drops
		a.Currency = "CSC"
		return nil
	}
	var obj struct {
		Currency string `json:"currency"`
		Value    string `json:"value"`
		Issuer   string `json:"issuer"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Currency = obj.Currency
	a.Value = obj.Value
	a.Issuer = obj.Issuer
	return nil
}

func (a amountField) isBaseCurrency() bool {
	return a.Drops != ""
}

type wireTx struct {
	Hash               string            `json:"hash"`
	TransactionType    string            `json:"TransactionType"`
	Account            string            `json:"Account"`
	Destination        string            `json:"Destination"`
	Amount             *amountField      `json:"Amount"`
	LimitAmount        *amountField      `json:"LimitAmount"`
	Fee                string            `json:"Fee"`
	Flags              uint32            `json:"Flags"`
	Sequence           uint32            `json:"Sequence"`
	LastLedgerSequence int64             `json:"LastLedgerSequence"`
	SigningPubKey      string            `json:"SigningPubKey"`
	Date               int64             `json:"date"`
	LedgerIndex        int64             `json:"ledger_index"`
	DestinationTag     *uint32           `json:"DestinationTag"`
	InvoiceID          string            `json:"InvoiceID"`
	Memos              []json.RawMessage `json:"Memos"`
}

type wireMeta struct {
	TransactionResult string       `json:"TransactionResult"`
	DeliveredAmount   *amountField `json:"delivered_amount"`
	AffectedNodes     []struct {
		ModifiedNode *struct {
			LedgerEntryType string `json:"LedgerEntryType"`
			FinalFields     struct {
				Account    string `json:"Account"`
				Balance    string `json:"Balance"`
				Sequence   uint32 `json:"Sequence"`
				OwnerCount uint32 `json:"OwnerCount"`
			} `json:"FinalFields"`
			PreviousFields struct {
				Balance string `json:"Balance"`
			} `json:"PreviousFields"`
		} `json:"ModifiedNode"`
	} `json:"AffectedNodes"`
}

func (m wireMeta) accountDiff() ports.LedgerDiff {
	diff := ports.LedgerDiff{}
	for _, node := range m.AffectedNodes {
		if node.ModifiedNode == nil ||
			node.ModifiedNode.LedgerEntryType != "AccountRoot" {
			continue
		}
		fields := node.ModifiedNode.FinalFields
		diff.ModifiedAccounts = append(diff.ModifiedAccounts, ports.ModifiedAccount{
			Address:         fields.Account,
			FinalBalance:    fields.Balance,
			PreviousBalance: node.ModifiedNode.PreviousFields.Balance,
			FinalSequence:   fields.Sequence,
			OwnerCount:      fields.OwnerCount,
		})
	}
	return diff
}

// decodeStreamMessage turns one stream message into a typed event, or nil
// when the message is of no interest.
func decodeStreamMessage(msgType string, raw json.RawMessage) ports.RemoteEvent {
	switch msgType {
	case "ledgerClosed":
		var msg struct {
			LedgerIndex int64  `json:"ledger_index"`
			LedgerHash  string `json:"ledger_hash"`
			LedgerTime  int64  `json:"ledger_time"`
			TxnCount    int    `json:"txn_count"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.WithError(err).Warn("discarding undecodable ledgerClosed message")
			return nil
		}
		return ports.LedgerClosedEvent{
			LedgerIndex: msg.LedgerIndex,
			LedgerHash:  msg.LedgerHash,
			LedgerTime:  msg.LedgerTime,
			TxnCount:    msg.TxnCount,
		}

	case "transaction":
		var msg struct {
			Validated   bool     `json:"validated"`
			LedgerIndex int64    `json:"ledger_index"`
			Transaction wireTx   `json:"transaction"`
			Meta        wireMeta `json:"meta"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.WithError(err).Warn("discarding undecodable transaction message")
			return nil
		}
		return decodeTransaction(
			msg.Transaction, msg.Meta, msg.Validated, msg.LedgerIndex,
		)

	default:
		return nil
	}
}

func decodeTransaction(
	tx wireTx, meta wireMeta, validated bool, ledgerIndex int64,
) ports.RemoteEvent {
	switch tx.TransactionType {
	case "Payment":
		amount := ""
		currency := "CSC"
		delivered := tx.Amount
		if meta.DeliveredAmount != nil {
			delivered = meta.DeliveredAmount
		}
		if delivered != nil {
			if delivered.isBaseCurrency() {
				amount = delivered.Drops
			} else {
				amount = delivered.Value
				currency = delivered.Currency
			}
		}
		return ports.PaymentEvent{
			TxID:               tx.Hash,
			Source:             tx.Account,
			Destination:        tx.Destination,
			Amount:             amount,
			Currency:           currency,
			Fee:                tx.Fee,
			Flags:              tx.Flags,
			Sequence:           tx.Sequence,
			LastLedgerSequence: tx.LastLedgerSequence,
			SigningPubKey:      tx.SigningPubKey,
			Timestamp:          tx.Date,
			Memos:              decodeWireMemos(tx.Memos),
			DestinationTag:     tx.DestinationTag,
			InvoiceID:          tx.InvoiceID,
			Validated:          validated,
			LedgerIndex:        ledgerIndex,
			EngineResult:       meta.TransactionResult,
		}

	case "SetCRNRound":
		return ports.RoundFeeEvent{
			TxID:            tx.Hash,
			Source:          tx.Account,
			Fee:             tx.Fee,
			LedgerSequence:  ledgerIndex,
			Timestamp:       tx.Date,
			TransactionType: tx.TransactionType,
			Diff:            meta.accountDiff(),
		}

	case "TrustSet":
		currency := ""
		if tx.LimitAmount != nil {
			currency = tx.LimitAmount.Currency
		}
		return ports.TrustlineEvent{
			TxID:        tx.Hash,
			Account:     tx.Account,
			Currency:    currency,
			LedgerIndex: ledgerIndex,
			Timestamp:   tx.Date,
			Diff:        meta.accountDiff(),
		}

	default:
		return nil
	}
}

// decodeHistoryTx maps one account_tx record to a history entry. Non-payment
// records are skipped, history replay only reconstructs value movements.
func decodeHistoryTx(
	rawTx, rawMeta json.RawMessage, indexInLedger int,
) (*ports.HistoryTx, error) {
	var tx wireTx
	if err := json.Unmarshal(rawTx, &tx); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrTransient, err)
	}
	if tx.TransactionType != "Payment" {
		return nil, nil
	}
	var meta wireMeta
	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrTransient, err)
	}
	if meta.TransactionResult != "tesSUCCESS" {
		return nil, nil
	}

	amount := ""
	currency := "CSC"
	delivered := tx.Amount
	if meta.DeliveredAmount != nil {
		delivered = meta.DeliveredAmount
	}
	if delivered != nil {
		if delivered.isBaseCurrency() {
			coins, err := cscutil.DropsToCSC(delivered.Drops)
			if err != nil {
				return nil, fmt.Errorf("malformed delivered amount: %w", err)
			}
			amount = coins
		} else {
			amount = delivered.Value
			currency = delivered.Currency
		}
	}

	fee := tx.Fee
	if coins, err := cscutil.DropsToCSC(tx.Fee); err == nil {
		fee = coins
	}

	return &ports.HistoryTx{
		ID:              tx.Hash,
		Type:            tx.TransactionType,
		Source:          tx.Account,
		Destination:     tx.Destination,
		DeliveredAmount: amount,
		Currency:        currency,
		Fee:             fee,
		Sequence:        tx.Sequence,
		Timestamp:       tx.Date,
		LedgerVersion:   tx.LedgerIndex,
		IndexInLedger:   indexInLedger,
		Memos:           decodeWireMemos(tx.Memos),
		DestinationTag:  tx.DestinationTag,
		InvoiceID:       tx.InvoiceID,
	}, nil
}

func decodeWireMemos(raw []json.RawMessage) []cscutil.RawMemo {
	if len(raw) == 0 {
		return nil
	}
	memos := make([]cscutil.RawMemo, 0, len(raw))
	for _, entry := range raw {
		var wrapper struct {
			Memo struct {
				MemoType   string `json:"MemoType"`
				MemoData   string `json:"MemoData"`
				MemoFormat string `json:"MemoFormat"`
			} `json:"Memo"`
		}
		if err := json.Unmarshal(entry, &wrapper); err != nil {
			continue
		}
		memos = append(memos, cscutil.RawMemo{
			MemoType:   wrapper.Memo.MemoType,
			MemoFormat: wrapper.Memo.MemoFormat,
			MemoData:   wrapper.Memo.MemoData,
		})
	}
	return memos
}
