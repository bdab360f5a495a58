package domain

const (
	// BaseCurrency is the native currency code of the ledger. Every address
	// in the wallet owns at least the base currency account, token accounts
	// are added per trustline.
	BaseCurrency = "CSC"

	// ImportedSequence marks accounts whose key was imported rather than
	// derived from the recovery phrase.
	ImportedSequence = -1
)

// Account is one (currency, address) balance record. PK is the unique
// primary key currency‖address, so an address holding three currencies owns
// three Account records.
type Account struct {
	PK              string
	Address         string
	AccountSequence int
	Currency        string
	Label           string
	Balance         string
	TokenBalance    string
	Activated       bool
	OwnerCount      uint32
	LastSequence    uint32
	LastTxID        string
	LastTxLedger    int64
}

// AccountPK builds the primary key for a (currency, address) pair.
func AccountPK(currency, address string) string {
	return currency + address
}

// NewAccount returns an account record with zeroed balances for the given
// pair. The caller fills in ledger state before or after insertion.
func NewAccount(currency, address, label string, sequence int) *Account {
	return &Account{
		PK:              AccountPK(currency, address),
		Address:         address,
		AccountSequence: sequence,
		Currency:        currency,
		Label:           label,
		Balance:         "0",
		TokenBalance:    "0",
		Activated:       false,
	}
}

// IsImported reports whether the account's key came from an explicit import.
func (a *Account) IsImported() bool {
	return a.AccountSequence == ImportedSequence
}

// IsBaseCurrency reports whether this is the address's native currency
// account rather than a token account.
func (a *Account) IsBaseCurrency() bool {
	return a.Currency == BaseCurrency
}
