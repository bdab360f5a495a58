package dbbadger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
)

func TestAddDuplicateTransaction(t *testing.T) {
	before()
	defer after()

	err := transactionRepository.Add(ctx, &domain.Transaction{TxID: "A1"})

	assert.True(t, errors.Is(err, domain.ErrDuplicateKey))
}

func TestGetTransaction(t *testing.T) {
	before()
	defer after()

	tx, err := transactionRepository.Get(ctx, "A2")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "50000000", tx.Amount)

	_, err = transactionRepository.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrTransactionNotFound))
}

func TestGetAllSortedByTimestamp(t *testing.T) {
	before()
	defer after()

	txs, err := transactionRepository.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 3, len(txs))
	assert.Equal(t, "A3", txs[0].TxID)
	assert.Equal(t, "A1", txs[2].TxID)
}

func TestGetPage(t *testing.T) {
	before()
	defer after()

	txs, err := transactionRepository.GetPage(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 1, len(txs))
	assert.Equal(t, "A2", txs[0].TxID)
}

func TestGetAllByAddressOnlyValidated(t *testing.T) {
	before()
	defer after()

	txs, err := transactionRepository.GetAllByAddress(
		ctx, "cDGhz1wjJBosmyAjrjoMAHqgwQVRb",
	)
	if err != nil {
		t.Fatal(err)
	}

	// A3 touches the address but is not validated yet
	assert.Equal(t, 2, len(txs))
	assert.Equal(t, "A1", txs[0].TxID)
	assert.Equal(t, "A2", txs[1].TxID)
}

func TestGetAllUnvalidated(t *testing.T) {
	before()
	defer after()

	txs, err := transactionRepository.GetAllUnvalidated(ctx)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 1, len(txs))
	assert.Equal(t, "A3", txs[0].TxID)
}

func TestUpdateTransaction(t *testing.T) {
	before()
	defer after()

	tx, err := transactionRepository.Get(ctx, "A3")
	if err != nil {
		t.Fatal(err)
	}

	tx.Validated = true
	tx.Status = domain.TxStatusValidated
	tx.InLedger = 700
	if err := transactionRepository.Update(ctx, tx); err != nil {
		t.Fatal(err)
	}

	count, err := transactionRepository.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 3, count)

	updated, err := transactionRepository.Get(ctx, "A3")
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, updated.Validated)
	assert.Equal(t, int64(700), updated.InLedger)
}

func TestRemoveAllByAddress(t *testing.T) {
	before()
	defer after()

	if err := transactionRepository.RemoveAllByAddress(
		ctx, "cDGhz1wjJBosmyAjrjoMAHqgwQVRb",
	); err != nil {
		t.Fatal(err)
	}

	count, err := transactionRepository.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 0, count)
}
