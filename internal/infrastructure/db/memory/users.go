// Package memory provides process-local implementations of the storage
// ports. It is the default driver; everything is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// UserRepository keeps the directory in registration order.
type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		u := r.users[i]
		return &u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email || u.ID == user.ID {
			return domain.ErrDuplicateEmail
		}
	}
	r.users = append(r.users, *user)
	return nil
}

// Update replaces the profile of user.ID, keeping the stored password hash.
func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(user.ID)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	for j, u := range r.users {
		if j != i && u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	next := *user
	next.PasswordHash = r.users[i].PasswordHash
	r.users[i] = next
	return nil
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	r.users[i].PasswordHash = hash
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	return nil
}

func (r *UserRepository) CountActive(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if u.Status != domain.UserInactive {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) indexOf(id string) int {
	for i, u := range r.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
