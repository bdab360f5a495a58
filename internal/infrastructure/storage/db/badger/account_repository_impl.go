package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
)

type accountRepositoryImpl struct {
	store *badgerhold.Store
}

func newAccountRepositoryImpl(store *badgerhold.Store) domain.AccountRepository {
	return &accountRepositoryImpl{store}
}

func (a *accountRepositoryImpl) Add(
	ctx context.Context, account *domain.Account,
) error {
	if err := a.store.Insert(account.PK, account); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (a *accountRepositoryImpl) Get(
	ctx context.Context, currency, address string,
) (*domain.Account, error) {
	var account domain.Account
	if err := a.store.Get(domain.AccountPK(currency, address), &account); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (a *accountRepositoryImpl) GetAll(
	ctx context.Context,
) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := a.store.Find(
		&accounts, badgerhold.Where("PK").Ne(""),
	); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (a *accountRepositoryImpl) GetAllByAddress(
	ctx context.Context, address string,
) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := a.store.Find(
		&accounts, badgerhold.Where("Address").Eq(address),
	); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (a *accountRepositoryImpl) GetAllByCurrency(
	ctx context.Context, currency string,
) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := a.store.Find(
		&accounts,
		badgerhold.Where("Currency").Eq(currency).SortBy("AccountSequence"),
	); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (a *accountRepositoryImpl) GetAllImported(
	ctx context.Context,
) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := a.store.Find(
		&accounts,
		badgerhold.Where("AccountSequence").Eq(domain.ImportedSequence),
	); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (a *accountRepositoryImpl) IsOwned(
	ctx context.Context, address string,
) (bool, error) {
	var accounts []domain.Account
	if err := a.store.Find(
		&accounts, badgerhold.Where("Address").Eq(address).Limit(1),
	); err != nil {
		return false, err
	}
	return len(accounts) > 0, nil
}

func (a *accountRepositoryImpl) MaxSequence(ctx context.Context) (int, error) {
	var accounts []domain.Account
	if err := a.store.Find(
		&accounts,
		badgerhold.Where("PK").Ne("").SortBy("AccountSequence").Reverse().Limit(1),
	); err != nil {
		return domain.ImportedSequence, err
	}
	if len(accounts) == 0 {
		return domain.ImportedSequence, nil
	}
	return accounts[0].AccountSequence, nil
}

func (a *accountRepositoryImpl) Update(
	ctx context.Context, account *domain.Account,
) error {
	if err := a.store.Update(account.PK, account); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrAccountNotFound
		}
		return err
	}
	return nil
}

func (a *accountRepositoryImpl) Remove(
	ctx context.Context, currency, address string,
) error {
	if err := a.store.Delete(
		domain.AccountPK(currency, address), &domain.Account{},
	); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrAccountNotFound
		}
		return err
	}
	return nil
}

func (a *accountRepositoryImpl) Clear(ctx context.Context) error {
	return a.store.DeleteMatching(
		&domain.Account{}, badgerhold.Where("PK").Ne(""),
	)
}
