package user

import "context"

// Repository defines the interface for account persistence.
type Repository interface {
	// Create persists a new account. Duplicate emails surface as
	// shared.ErrUserAlreadyExists.
	Create(ctx context.Context, account *Account) error

	// FindByEmail returns the account with the given normalized email.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// FindByID returns the account with the given ID.
	FindByID(ctx context.Context, id string) (*Account, error)
}
