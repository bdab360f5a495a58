package cscutil

import "time"

// The ledger counts seconds from 2000-01-01T00:00:00Z instead of the UNIX
// epoch. 0x386D4380 is the offset between the two.
const epochOffset int64 = 0x386D4380

// TimeToLedgerEpoch converts a wall clock time to ledger epoch seconds.
func TimeToLedgerEpoch(t time.Time) int64 {
	return t.Unix() - epochOffset
}

// LedgerEpochToTime converts ledger epoch seconds back to a wall clock time.
func LedgerEpochToTime(ledgerTime int64) time.Time {
	return time.Unix(ledgerTime+epochOffset, 0).UTC()
}

// LedgerEpochNow returns the current time in ledger epoch seconds.
func LedgerEpochNow() int64 {
	return TimeToLedgerEpoch(time.Now())
}
