package wsledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casinocoin/cscwalletd/internal/core/ports"
)

func TestAmountFieldShapes(t *testing.T) {
	var drops amountField
	require.NoError(t, json.Unmarshal([]byte(`"123456"`), &drops))
	assert.True(t, drops.isBaseCurrency())
	assert.Equal(t, "123456", drops.Drops)

	var token amountField
	require.NoError(t, json.Unmarshal(
		[]byte(`{"currency":"XTK","value":"7.5","issuer":"cIssuer"}`), &token,
	))
	assert.False(t, token.isBaseCurrency())
	assert.Equal(t, "XTK", token.Currency)
	assert.Equal(t, "7.5", token.Value)
}

func TestDecodePaymentStreamMessage(t *testing.T) {
	raw := []byte(`{
		"type": "transaction",
		"validated": true,
		"ledger_index": 12345,
		"transaction": {
			"hash": "ABCD",
			"TransactionType": "Payment",
			"Account": "cSender",
			"Destination": "cReceiver",
			"Amount": "100000000",
			"Fee": "10000",
			"Sequence": 7,
			"date": 570000000
		},
		"meta": {
			"TransactionResult": "tesSUCCESS"
		}
	}`)

	event := decodeStreamMessage("transaction", raw)
	require.NotNil(t, event)

	payment, ok := event.(ports.PaymentEvent)
	require.True(t, ok)
	assert.Equal(t, "ABCD", payment.TxID)
	assert.Equal(t, "cSender", payment.Source)
	assert.Equal(t, "100000000", payment.Amount)
	assert.Equal(t, "CSC", payment.Currency)
	assert.True(t, payment.Validated)
	assert.Equal(t, int64(12345), payment.LedgerIndex)
	assert.Equal(t, "tesSUCCESS", payment.EngineResult)
}

func TestDecodeRoundFeeStreamMessage(t *testing.T) {
	raw := []byte(`{
		"type": "transaction",
		"validated": true,
		"ledger_index": 200,
		"transaction": {
			"hash": "FEE1",
			"TransactionType": "SetCRNRound",
			"Account": "cFeePool",
			"Fee": "0"
		},
		"meta": {
			"TransactionResult": "tesSUCCESS",
			"AffectedNodes": [
				{
					"ModifiedNode": {
						"LedgerEntryType": "AccountRoot",
						"FinalFields": {
							"Account": "cOwned1",
							"Balance": "1500",
							"Sequence": 3,
							"OwnerCount": 0
						},
						"PreviousFields": {"Balance": "1000"}
					}
				},
				{
					"ModifiedNode": {
						"LedgerEntryType": "RippleState",
						"FinalFields": {"Account": "cIgnored"}
					}
				}
			]
		}
	}`)

	event := decodeStreamMessage("transaction", raw)
	require.NotNil(t, event)

	roundFee, ok := event.(ports.RoundFeeEvent)
	require.True(t, ok)
	assert.Equal(t, "FEE1", roundFee.TxID)
	require.Equal(t, 1, len(roundFee.Diff.ModifiedAccounts))
	assert.Equal(t, "cOwned1", roundFee.Diff.ModifiedAccounts[0].Address)
	assert.Equal(t, "1500", roundFee.Diff.ModifiedAccounts[0].FinalBalance)
	assert.Equal(t, "1000", roundFee.Diff.ModifiedAccounts[0].PreviousBalance)
}

func TestDecodeLedgerClosedMessage(t *testing.T) {
	raw := []byte(`{
		"type": "ledgerClosed",
		"ledger_index": 999,
		"ledger_hash": "HASH",
		"ledger_time": 570000001,
		"txn_count": 3
	}`)

	event := decodeStreamMessage("ledgerClosed", raw)
	require.NotNil(t, event)

	closed, ok := event.(ports.LedgerClosedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(999), closed.LedgerIndex)
	assert.Equal(t, 3, closed.TxnCount)
}

func TestDecodeHistoryTx(t *testing.T) {
	tx := []byte(`{
		"hash": "H1",
		"TransactionType": "Payment",
		"Account": "cSender",
		"Destination": "cReceiver",
		"Amount": "250000000",
		"Fee": "10000",
		"Sequence": 1,
		"date": 570000000,
		"ledger_index": 50
	}`)
	meta := []byte(`{"TransactionResult": "tesSUCCESS", "delivered_amount": "250000000"}`)

	entry, err := decodeHistoryTx(tx, meta, 0)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "2.5", entry.DeliveredAmount)
	assert.Equal(t, "0.0001", entry.Fee)
	assert.Equal(t, "CSC", entry.Currency)

	// non-payment records are not part of the replay
	trustSet := []byte(`{"hash": "H2", "TransactionType": "TrustSet"}`)
	entry, err = decodeHistoryTx(trustSet, meta, 1)
	require.NoError(t, err)
	assert.Nil(t, entry)
}
