package auth

import "context"

// UserStore describes the persistence operations the auth flows require.
type UserStore interface {
	// Create inserts the user and fills in the assigned id. A duplicate
	// email returns ErrAlreadyExists even when the caller's pre-check
	// passed: the unique constraint is the authority under races.
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id int64) (*User, error)
	// FindByEmail returns ErrNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
