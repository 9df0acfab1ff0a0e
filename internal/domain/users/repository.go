package users

import "context"

type Repository interface {
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Create returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, user *User) error
	ListByIDs(ctx context.Context, userIDs []string) ([]User, error)
}
