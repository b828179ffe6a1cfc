package ports

import (
	"context"
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// UserRepository is the identity directory.
//
// Lookups of a missing identity return domain.ErrUserNotFound; writes that
// would break email uniqueness return domain.ErrDuplicateEmail.
type UserRepository interface {
	// List returns every identity in registration order.
	List(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail is a case-sensitive exact match.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	// Update replaces the stored record with user (matched by ID).
	Update(ctx context.Context, user *domain.User) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	// CountActive counts identities whose status is not inactive.
	CountActive(ctx context.Context) (int64, error)
}

// LoginLimiter throttles repeated failed logins for one email.
type LoginLimiter interface {
	// Allow reports whether a login attempt may proceed and, if not, for how long it is blocked.
	Allow(ctx context.Context, email string) (bool, time.Duration, error)
	// Success resets the failure counter.
	Success(ctx context.Context, email string) error
	// Failure records a failed attempt.
	Failure(ctx context.Context, email string) error
}
