// Package memory provides an in-memory UserRepository used by tests and by
// local experiments that do not need PostgreSQL. It enforces the same email
// and cpf uniqueness rules as the real table.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcarvalho/usuarios-api/internal/domain/entity"
	"github.com/mcarvalho/usuarios-api/internal/domain/repository"
)

type UserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, users: map[int64]entity.User{}}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.CPF == u.CPF {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// Email and cpf stay as stored; only the mutable fields are written.
	stored.Name = u.Name
	stored.Password = u.Password
	stored.State = u.State
	stored.City = u.City
	stored.Neighborhood = u.Neighborhood
	stored.Street = u.Street
	stored.Number = u.Number
	stored.Phone = u.Phone
	stored.Birthdate = u.Birthdate
	r.users[u.ID] = stored
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// Len reports the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

var _ repository.UserRepository = (*UserRepository)(nil)
