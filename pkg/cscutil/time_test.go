package cscutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLedgerEpochRoundTrip(t *testing.T) {
	ref := time.Date(2018, 3, 1, 12, 0, 0, 0, time.UTC)

	ledgerTime := TimeToLedgerEpoch(ref)
	assert.Equal(t, ref, LedgerEpochToTime(ledgerTime))
}

func TestLedgerEpochOrigin(t *testing.T) {
	origin := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(0), TimeToLedgerEpoch(origin))
	assert.Equal(t, origin, LedgerEpochToTime(0))
}

func TestDecodeMemos(t *testing.T) {
	memos := DecodeMemos([]RawMemo{
		{
			// "Description" / "Deposit"
			MemoType: "4465736372697074696f6e",
			MemoData: "4465706f736974",
		},
		{MemoData: "not-hex"},
	})

	assert.Equal(t, 2, len(memos))
	assert.Equal(t, "Description", memos[0].MemoType)
	assert.Equal(t, "Deposit", memos[0].MemoData)
	assert.Equal(t, "not-hex", memos[1].MemoData)

	assert.Nil(t, DecodeMemos(nil))
}
