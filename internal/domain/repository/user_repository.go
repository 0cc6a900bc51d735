package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when a save would violate the username
	// unique constraint. The constraint is the authoritative guard; service
	// level pre-checks only exist for friendlier error paths.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken is the email counterpart of ErrUsernameTaken.
	ErrEmailTaken = errors.New("email already taken")
)

// UserRepository defines the persistence contract for the Users table.
// Lookups do not filter on IsActive; callers decide whether a deactivated
// row is visible for their use case.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Deactivate(ctx context.Context, id int64) error
}
