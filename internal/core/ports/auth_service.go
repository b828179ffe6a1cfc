package ports

import (
	"context"
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

// RegisterInput carries a self-service (or staff) registration.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Role      domain.Role // empty means client
	ERPSystem domain.ERPSystem
}

// CreateUserInput is the partial identity an admin supplies to CreateUser.
type CreateUserInput struct {
	Name      string
	Email     string
	Role      domain.Role
	Avatar    string
	ERPSystem domain.ERPSystem
	Status    domain.UserStatus
}

// AuthService is the session and authorization store. Every operation that
// depends on the caller takes the caller's session explicitly.
type AuthService interface {
	Login(ctx context.Context, sess *session.Session, email, password string) (*domain.User, error)
	Register(ctx context.Context, sess *session.Session, in RegisterInput) (*domain.User, error)
	Logout(ctx context.Context, sess *session.Session)
	// Revalidate checks a restored session against the directory and returns
	// the identity the directory currently holds for it.
	Revalidate(ctx context.Context, sess *session.Session) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, sess *session.Session, in CreateUserInput, password string) (*domain.User, error)
	UpdateUser(ctx context.Context, sess *session.Session, id string, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, sess *session.Session, id string) error
	ResetPassword(ctx context.Context, sess *session.Session, id, newPassword string) error
	// IssueToken signs a bearer token bound to an authenticated session.
	IssueToken(sess *session.Session) (string, time.Time, error)
}

// SessionObserver is told when a session gains or loses its identity, and
// when an identity is removed from the directory.
type SessionObserver interface {
	SessionStarted(sess *session.Session, user domain.User)
	SessionEnded(sess *session.Session)
	IdentityRemoved(userID string)
}
