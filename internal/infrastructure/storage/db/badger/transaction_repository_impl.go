package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
)

type transactionRepositoryImpl struct {
	store *badgerhold.Store
}

func newTransactionRepositoryImpl(
	store *badgerhold.Store,
) domain.TransactionRepository {
	return &transactionRepositoryImpl{store}
}

func (t *transactionRepositoryImpl) Add(
	ctx context.Context, tx *domain.Transaction,
) error {
	if err := t.store.Insert(tx.TxID, tx); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (t *transactionRepositoryImpl) Get(
	ctx context.Context, txID string,
) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := t.store.Get(txID, &tx); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (t *transactionRepositoryImpl) GetAll(
	ctx context.Context,
) ([]domain.Transaction, error) {
	return t.findTxs(
		badgerhold.Where("TxID").Ne("").SortBy("Timestamp").Reverse(),
	)
}

func (t *transactionRepositoryImpl) GetPage(
	ctx context.Context, offset, limit int,
) ([]domain.Transaction, error) {
	return t.findTxs(
		badgerhold.Where("TxID").Ne("").
			SortBy("Timestamp").Reverse().Skip(offset).Limit(limit),
	)
}

func (t *transactionRepositoryImpl) GetPageByAddress(
	ctx context.Context, address string, offset, limit int,
) ([]domain.Transaction, error) {
	return t.findTxs(
		badgerhold.Where("Account").Eq(address).
			Or(badgerhold.Where("Destination").Eq(address)).
			SortBy("Timestamp").Reverse().Skip(offset).Limit(limit),
	)
}

func (t *transactionRepositoryImpl) GetPageByCurrency(
	ctx context.Context, currency string, offset, limit int,
) ([]domain.Transaction, error) {
	return t.findTxs(
		badgerhold.Where("Currency").Eq(currency).
			SortBy("Timestamp").Reverse().Skip(offset).Limit(limit),
	)
}

func (t *transactionRepositoryImpl) GetAllByAddress(
	ctx context.Context, address string,
) ([]domain.Transaction, error) {
	return t.findTxs(
		badgerhold.Where("Account").Eq(address).And("Validated").Eq(true).
			Or(badgerhold.Where("Destination").Eq(address).And("Validated").Eq(true)).
			SortBy("InLedger"),
	)
}

func (t *transactionRepositoryImpl) GetAllUnvalidated(
	ctx context.Context,
) ([]domain.Transaction, error) {
	return t.findTxs(badgerhold.Where("Validated").Eq(false))
}

func (t *transactionRepositoryImpl) Count(ctx context.Context) (int, error) {
	txs, err := t.findTxs(badgerhold.Where("TxID").Ne(""))
	if err != nil {
		return 0, err
	}
	return len(txs), nil
}

func (t *transactionRepositoryImpl) Update(
	ctx context.Context, tx *domain.Transaction,
) error {
	if err := t.store.Update(tx.TxID, tx); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrTransactionNotFound
		}
		return err
	}
	return nil
}

func (t *transactionRepositoryImpl) RemoveAllByAddress(
	ctx context.Context, address string,
) error {
	return t.store.DeleteMatching(
		&domain.Transaction{},
		badgerhold.Where("Account").Eq(address).
			Or(badgerhold.Where("Destination").Eq(address)),
	)
}

func (t *transactionRepositoryImpl) Clear(ctx context.Context) error {
	return t.store.DeleteMatching(
		&domain.Transaction{}, badgerhold.Where("TxID").Ne(""),
	)
}

func (t *transactionRepositoryImpl) findTxs(
	query *badgerhold.Query,
) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := t.store.Find(&txs, query); err != nil {
		return nil, err
	}
	return txs, nil
}
