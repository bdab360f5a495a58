package domain

import "context"

// KeyRepository is the keys collection, keyed uniquely by address.
type KeyRepository interface {
	Add(ctx context.Context, key *Key) error
	Get(ctx context.Context, address string) (*Key, error)
	GetAll(ctx context.Context) ([]Key, error)
	Update(ctx context.Context, key *Key) error
	Remove(ctx context.Context, address string) error
	Clear(ctx context.Context) error
}
