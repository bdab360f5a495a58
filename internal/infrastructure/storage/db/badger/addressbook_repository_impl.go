package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
)

type addressBookRepositoryImpl struct {
	store *badgerhold.Store
}

func newAddressBookRepositoryImpl(
	store *badgerhold.Store,
) domain.AddressBookRepository {
	return &addressBookRepositoryImpl{store}
}

func (a *addressBookRepositoryImpl) Add(
	ctx context.Context, entry *domain.AddressBookEntry,
) error {
	if err := a.store.Insert(entry.Address, entry); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (a *addressBookRepositoryImpl) Get(
	ctx context.Context, address string,
) (*domain.AddressBookEntry, error) {
	var entry domain.AddressBookEntry
	if err := a.store.Get(address, &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (a *addressBookRepositoryImpl) GetAll(
	ctx context.Context,
) ([]domain.AddressBookEntry, error) {
	var entries []domain.AddressBookEntry
	if err := a.store.Find(
		&entries, badgerhold.Where("Address").Ne(""),
	); err != nil {
		return nil, err
	}
	return entries, nil
}

func (a *addressBookRepositoryImpl) Update(
	ctx context.Context, entry *domain.AddressBookEntry,
) error {
	if err := a.store.Update(entry.Address, entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrAddressNotFound
		}
		return err
	}
	return nil
}

func (a *addressBookRepositoryImpl) Remove(
	ctx context.Context, address string,
) error {
	if err := a.store.Delete(address, &domain.AddressBookEntry{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrAddressNotFound
		}
		return err
	}
	return nil
}

func (a *addressBookRepositoryImpl) Clear(ctx context.Context) error {
	return a.store.DeleteMatching(
		&domain.AddressBookEntry{}, badgerhold.Where("Address").Ne(""),
	)
}
