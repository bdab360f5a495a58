package cscutil

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// DropsPerCSC is the number of indivisible ledger units in one coin.
	DropsPerCSC = 100000000
)

var (
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount is not a valid decimal number")
)

var dropsPerCSC = decimal.New(DropsPerCSC, 0)

// CSCToDrops converts an amount expressed in coins to its representation in
// drops, the smallest ledger unit. Balances are persisted in drops.
func CSCToDrops(csc string) (string, error) {
	value, err := decimal.NewFromString(csc)
	if err != nil {
		return "", ErrInvalidAmount
	}
	return value.Mul(dropsPerCSC).String(), nil
}

// DropsToCSC converts an amount in drops to its human readable representation
// in coins. Non-positive amounts render as "0.00" like the desktop wallet
// always did.
func DropsToCSC(drops string) (string, error) {
	value, err := decimal.NewFromString(drops)
	if err != nil {
		return "", ErrInvalidAmount
	}
	if value.Sign() <= 0 {
		return "0.00", nil
	}
	return value.Div(dropsPerCSC).String(), nil
}

// FormatAmount renders a drops amount as coins for user facing messages.
// Invalid input falls back to the raw string rather than failing, callers use
// this for best-effort notification text only.
func FormatAmount(drops string) string {
	csc, err := DropsToCSC(drops)
	if err != nil {
		return drops
	}
	return csc
}
