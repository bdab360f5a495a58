package dbbadger

import (
	"context"
	"os"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
	"github.com/casinocoin/cscwalletd/internal/core/ports"
)

var ctx = context.Background()
var repoManagerUnderTest ports.RepoManager
var accountRepository domain.AccountRepository
var keyRepository domain.KeyRepository
var transactionRepository domain.TransactionRepository
var addressBookRepository domain.AddressBookRepository
var testDbDir string

func before() {
	var err error
	testDbDir, err = os.MkdirTemp("", "cscwalletd-test-*")
	if err != nil {
		panic(err)
	}

	repoManagerUnderTest, err = NewRepoManager(testDbDir, 0)
	if err != nil {
		panic(err)
	}
	accountRepository = repoManagerUnderTest.AccountRepository()
	keyRepository = repoManagerUnderTest.KeyRepository()
	transactionRepository = repoManagerUnderTest.TransactionRepository()
	addressBookRepository = repoManagerUnderTest.AddressBookRepository()

	if err := insertAccounts(); err != nil {
		panic(err)
	}
	if err := insertTransactions(); err != nil {
		panic(err)
	}
}

func after() {
	repoManagerUnderTest.Close()
	if err := os.RemoveAll(testDbDir); err != nil {
		panic(err)
	}
}

func insertAccounts() error {
	accounts := []*domain.Account{
		newTestAccount("CSC", "cDGhz1wjJBosmyAjrjoMAHqgwQVRb", 0, "1000000000"),
		newTestAccount("CSC", "cLZGBrdXNvzvhnZ1mMQzrmT1ebHj2", 1, "250000000"),
		newTestAccount("XTK", "cLZGBrdXNvzvhnZ1mMQzrmT1ebHj2", 1, "0"),
		newTestAccount("CSC", "cN7yRefEdTUzm4MEBWqT9DJxSMJu3", 2, "0"),
	}
	for _, account := range accounts {
		if err := accountRepository.Add(ctx, account); err != nil {
			return err
		}
	}
	return nil
}

func newTestAccount(
	currency, address string, sequence int, balance string,
) *domain.Account {
	account := domain.NewAccount(
		currency, address, currency+" test account", sequence,
	)
	account.Balance = balance
	account.Activated = balance != "0"
	return account
}

func insertTransactions() error {
	txs := []*domain.Transaction{
		{
			TxID:        "A1",
			Account:     "cDGhz1wjJBosmyAjrjoMAHqgwQVRb",
			Destination: "cLZGBrdXNvzvhnZ1mMQzrmT1ebHj2",
			Amount:      "100000000",
			Currency:    "CSC",
			Fee:         "10000",
			Timestamp:   1000,
			Direction:   domain.TxDirectionBoth,
			Validated:   true,
			Status:      domain.TxStatusValidated,
			InLedger:    500,
		},
		{
			TxID:        "A2",
			Account:     "cDGhz1wjJBosmyAjrjoMAHqgwQVRb",
			Destination: "cUnknownMerchant111111111111",
			Amount:      "50000000",
			Currency:    "CSC",
			Fee:         "10000",
			Timestamp:   2000,
			Direction:   domain.TxDirectionOut,
			Validated:   true,
			Status:      domain.TxStatusValidated,
			InLedger:    600,
		},
		{
			TxID:        "A3",
			Account:     "cUnknownSender11111111111111",
			Destination: "cDGhz1wjJBosmyAjrjoMAHqgwQVRb",
			Amount:      "25000000",
			Currency:    "CSC",
			Fee:         "10000",
			Timestamp:   3000,
			Direction:   domain.TxDirectionIn,
			Validated:   false,
			Status:      domain.TxStatusReceived,
			InLedger:    0,
		},
	}
	for _, tx := range txs {
		if err := transactionRepository.Add(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}
