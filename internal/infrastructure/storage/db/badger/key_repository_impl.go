package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
)

type keyRepositoryImpl struct {
	store *badgerhold.Store
}

func newKeyRepositoryImpl(store *badgerhold.Store) domain.KeyRepository {
	return &keyRepositoryImpl{store}
}

func (k *keyRepositoryImpl) Add(ctx context.Context, key *domain.Key) error {
	if err := k.store.Insert(key.Address, key); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (k *keyRepositoryImpl) Get(
	ctx context.Context, address string,
) (*domain.Key, error) {
	var key domain.Key
	if err := k.store.Get(address, &key); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, err
	}
	return &key, nil
}

func (k *keyRepositoryImpl) GetAll(ctx context.Context) ([]domain.Key, error) {
	var keys []domain.Key
	if err := k.store.Find(
		&keys, badgerhold.Where("Address").Ne(""),
	); err != nil {
		return nil, err
	}
	return keys, nil
}

func (k *keyRepositoryImpl) Update(ctx context.Context, key *domain.Key) error {
	if err := k.store.Update(key.Address, key); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrKeyNotFound
		}
		return err
	}
	return nil
}

func (k *keyRepositoryImpl) Remove(ctx context.Context, address string) error {
	if err := k.store.Delete(address, &domain.Key{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrKeyNotFound
		}
		return err
	}
	return nil
}

func (k *keyRepositoryImpl) Clear(ctx context.Context) error {
	return k.store.DeleteMatching(
		&domain.Key{}, badgerhold.Where("Address").Ne(""),
	)
}
