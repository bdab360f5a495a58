package domain

import "context"

// AddressBookEntry is a labeled address, either a contact or one of the
// wallet's own addresses.
type AddressBookEntry struct {
	Address string
	Label   string
	Owner   bool
}

// AddressBookRepository is the addressbook collection, keyed uniquely by
// address.
type AddressBookRepository interface {
	Add(ctx context.Context, entry *AddressBookEntry) error
	Get(ctx context.Context, address string) (*AddressBookEntry, error)
	GetAll(ctx context.Context) ([]AddressBookEntry, error)
	Update(ctx context.Context, entry *AddressBookEntry) error
	Remove(ctx context.Context, address string) error
	Clear(ctx context.Context) error
}
