package repository

import (
	"context"
	"errors"

	"github.com/mcarvalho/usuarios-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when an id or email lookup misses.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when an insert violates the email or cpf
	// unique constraint. The constraint is the source of truth for
	// uniqueness; any pre-check is advisory only.
	ErrDuplicate = errors.New("email or cpf already registered")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id int64) error
}
