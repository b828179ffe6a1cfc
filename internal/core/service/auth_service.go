package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/akilawedasinghe/symetrix/internal/api/metrics"
	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

// AuthService implements the session and authorization store: login,
// registration and the admin-gated directory mutations.
type AuthService struct {
	repo      ports.UserRepository
	limiter   ports.LoginLimiter
	activity  ports.ActivityPublisher
	observer  ports.SessionObserver
	jwtSecret string
	tokenTTL  time.Duration
	latency   time.Duration
	cost      int
	log       zerolog.Logger
	now       func() time.Time
}

// AuthOption configures optional AuthService collaborators.
type AuthOption func(*AuthService)

// WithLoginLimiter throttles failed logins.
func WithLoginLimiter(l ports.LoginLimiter) AuthOption { return func(s *AuthService) { s.limiter = l } }

// WithActivityPublisher reports registrations to the activity pipeline.
func WithActivityPublisher(p ports.ActivityPublisher) AuthOption {
	return func(s *AuthService) { s.activity = p }
}

// WithSessionObserver is told when sessions start and end.
func WithSessionObserver(o ports.SessionObserver) AuthOption {
	return func(s *AuthService) { s.observer = o }
}

// WithLatency makes Login and Register wait d before resolving.
func WithLatency(d time.Duration) AuthOption { return func(s *AuthService) { s.latency = d } }

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) AuthOption { return func(s *AuthService) { s.cost = cost } }

func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger, opts ...AuthOption) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	s := &AuthService{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		cost:      bcrypt.DefaultCost,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates sess as the identity registered under email.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, email, password string) (*domain.User, error) {
	user, err := sess.Authenticate(ctx, func() (*domain.User, error) {
		s.simulateLatency()
		return s.verify(ctx, email, password)
	})
	if err != nil {
		s.fail("login", "Login failed", err)
		return nil, err
	}

	s.startSession(sess, *user)
	s.succeed("login", "Login successful", fmt.Sprintf("Welcome back, %s!", user.Name))
	return user, nil
}

func (s *AuthService) verify(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		allowed, retryAfter, err := s.limiter.Allow(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
		if !allowed {
			s.log.Debug().Str("email", email).Dur("retry_after", retryAfter).Msg("login blocked")
			return nil, domain.ErrRateLimited
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.recordFailure(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Success(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to reset login limiter")
		}
	}
	return sanitize(user), nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Failure(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to record login failure")
	}
}

// Register adds a new identity. A client registration also logs sess in;
// staff registrations leave sess untouched. sess may be nil.
func (s *AuthService) Register(ctx context.Context, sess *session.Session, in ports.RegisterInput) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleClient
	}

	var inserted string
	create := func() (*domain.User, error) {
		s.simulateLatency()
		user, err := s.buildUser(in.Name, in.Email, in.Password, role, in.ERPSystem, true)
		if err != nil {
			return nil, err
		}
		if err := s.insert(ctx, user); err != nil {
			return nil, err
		}
		inserted = user.ID
		return sanitize(user), nil
	}

	var (
		user *domain.User
		err  error
	)
	if role == domain.RoleClient && sess != nil {
		user, err = sess.Authenticate(ctx, create)
	} else {
		user, err = create()
	}
	if err != nil {
		// The identity may be stored while the session snapshot failed.
		if inserted != "" {
			if delErr := s.repo.Delete(ctx, inserted); delErr != nil {
				s.log.Error().Err(delErr).Str("user_id", inserted).Msg("failed to undo registration")
			}
		}
		s.fail("register", "Registration failed", err)
		return nil, err
	}

	if role == domain.RoleClient && sess != nil {
		s.startSession(sess, *user)
	}
	s.publishRegistration(*user, "")
	s.succeed("register", "Registration successful", fmt.Sprintf("Welcome, %s!", user.Name))
	return user, nil
}

// Logout clears sess and its snapshot. It always succeeds.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) {
	if sess == nil {
		return
	}
	if s.observer != nil {
		s.observer.SessionEnded(sess)
	}
	if err := sess.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Str("session_id", sess.ID()).Msg("failed to clear session snapshot")
	}
	s.succeed("logout", "Logged out", "You have been successfully logged out.")
}

// Revalidate reconciles a restored session with the directory. A session
// whose identity was deleted is ended and fails with ErrUnauthenticated;
// otherwise profile changes made since the snapshot was written, including
// role and ERP tag, are copied into the session.
func (s *AuthService) Revalidate(ctx context.Context, sess *session.Session) (*domain.User, error) {
	current := sess.User()
	if current == nil || !sess.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}

	stored, err := s.repo.FindByID(ctx, current.ID)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Info().Str("session_id", sess.ID()).Str("user_id", current.ID).Msg("session identity no longer exists")
		if s.observer != nil {
			s.observer.SessionEnded(sess)
		}
		if err := sess.Logout(ctx); err != nil {
			s.log.Warn().Err(err).Str("session_id", sess.ID()).Msg("failed to clear session snapshot")
		}
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("revalidate session: %w", err)
	}

	fresh := sanitize(stored)
	if !profileChanged(current, fresh) {
		return current, nil
	}
	if err := sess.Refresh(ctx, *fresh); err != nil {
		return nil, fmt.Errorf("revalidate session: %w", err)
	}
	if current.Role != fresh.Role {
		s.startSession(sess, *fresh)
	}
	s.log.Info().Str("session_id", sess.ID()).Str("user_id", fresh.ID).Str("role", string(fresh.Role)).Msg("session identity refreshed")
	return fresh, nil
}

// GetAllUsers returns the directory. It performs no role check.
func (s *AuthService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// CreateUser adds an identity of any role on behalf of an admin.
func (s *AuthService) CreateUser(ctx context.Context, sess *session.Session, in ports.CreateUserInput, password string) (*domain.User, error) {
	user, err := s.createUser(ctx, sess, in, password)
	if err != nil {
		s.fail("create_user", "User creation failed", err)
		return nil, err
	}
	s.publishRegistration(*user, sess.User().ID)
	s.succeed("create_user", "User created", fmt.Sprintf("%s has been added successfully.", user.Name))
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, sess *session.Session, in ports.CreateUserInput, password string) (*domain.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if in.Name == "" || in.Email == "" || in.Role == "" {
		return nil, fmt.Errorf("%w: name, email and role are required", domain.ErrMissingRequiredField)
	}

	user, err := s.buildUser(in.Name, in.Email, password, in.Role, in.ERPSystem, false)
	if err != nil {
		return nil, err
	}
	user.Avatar = in.Avatar
	if in.Status != "" {
		if !validStatus(in.Status) {
			return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidField, in.Status)
		}
		user.Status = in.Status
	}

	if err := s.insert(ctx, user); err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

// UpdateUser shallow-merges patch over the identity id.
func (s *AuthService) UpdateUser(ctx context.Context, sess *session.Session, id string, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.updateUser(ctx, sess, id, patch)
	if err != nil {
		s.fail("update_user", "User update failed", err)
		return nil, err
	}
	s.succeed("update_user", "User updated", fmt.Sprintf("%s's profile has been updated.", user.Name))
	return user, nil
}

func (s *AuthService) updateUser(ctx context.Context, sess *session.Session, id string, patch domain.UserPatch) (*domain.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := patch.Apply(*existing)
	if merged.Name == "" || merged.Email == "" {
		return nil, fmt.Errorf("%w: name and email cannot be empty", domain.ErrMissingRequiredField)
	}
	if !merged.Role.Valid() {
		return nil, fmt.Errorf("%w: role %q", domain.ErrInvalidField, merged.Role)
	}
	if merged.Role.Staff() {
		merged.ERPSystem = ""
	} else if merged.ERPSystem != "" && !merged.ERPSystem.Valid() {
		return nil, fmt.Errorf("%w: erp system %q", domain.ErrInvalidField, merged.ERPSystem)
	}
	if merged.Status != "" && !validStatus(merged.Status) {
		return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidField, merged.Status)
	}

	if merged.Email != existing.Email {
		other, err := s.repo.FindByEmail(ctx, merged.Email)
		switch {
		case err == nil && other.ID != id:
			return nil, domain.ErrDuplicateEmail
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	merged.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, &merged); err != nil {
		return nil, err
	}
	return sanitize(&merged), nil
}

// DeleteUser removes the identity id permanently.
func (s *AuthService) DeleteUser(ctx context.Context, sess *session.Session, id string) error {
	err := requireAdmin(sess)
	if err == nil {
		err = s.repo.Delete(ctx, id)
	}
	if err != nil {
		s.fail("delete_user", "User deletion failed", err)
		return err
	}
	if s.observer != nil {
		s.observer.IdentityRemoved(id)
	}
	s.succeed("delete_user", "User deleted", fmt.Sprintf("user %s has been removed from the system.", id))
	return nil
}

// ResetPassword replaces the stored credential of id.
func (s *AuthService) ResetPassword(ctx context.Context, sess *session.Session, id, newPassword string) error {
	user, err := s.resetPassword(ctx, sess, id, newPassword)
	if err != nil {
		s.fail("reset_password", "Password reset failed", err)
		return err
	}
	s.succeed("reset_password", "Password reset", fmt.Sprintf("Password has been reset for %s.", user.Name))
	return nil
}

func (s *AuthService) resetPassword(ctx context.Context, sess *session.Session, id, newPassword string) (*domain.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if newPassword == "" {
		return nil, fmt.Errorf("%w: password", domain.ErrMissingRequiredField)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, string(hash)); err != nil {
		return nil, err
	}
	return user, nil
}

// IssueToken signs a bearer token for an authenticated session.
func (s *AuthService) IssueToken(sess *session.Session) (string, time.Time, error) {
	user := sess.User()
	if user == nil || !sess.IsAuthenticated() {
		return "", time.Time{}, domain.ErrUnauthenticated
	}

	exp := s.now().Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sid":        sess.ID(),
		"sub":        user.ID,
		"role":       string(user.Role),
		"erp_system": string(user.ERPSystem),
		"exp":        exp.Unix(),
		"iat":        s.now().Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// buildUser validates a new identity and hashes its password.
func (s *AuthService) buildUser(name, email, password string, role domain.Role, erp domain.ERPSystem, requireERP bool) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrMissingRequiredField)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role %q", domain.ErrInvalidField, role)
	}
	if role == domain.RoleClient {
		if erp == "" && requireERP {
			return nil, fmt.Errorf("%w: erp system is required for client accounts", domain.ErrMissingRequiredField)
		}
		if erp != "" && !erp.Valid() {
			return nil, fmt.Errorf("%w: erp system %q", domain.ErrInvalidField, erp)
		}
	} else {
		erp = ""
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		ERPSystem:    erp,
		Status:       domain.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *AuthService) insert(ctx context.Context, user *domain.User) error {
	_, err := s.repo.FindByEmail(ctx, user.Email)
	switch {
	case err == nil:
		return domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("register: %w", err)
	}
	return s.repo.Create(ctx, user)
}

func (s *AuthService) startSession(sess *session.Session, user domain.User) {
	if s.observer != nil {
		s.observer.SessionStarted(sess, user)
	}
}

func (s *AuthService) publishRegistration(user domain.User, createdBy string) {
	if s.activity == nil {
		return
	}
	a := domain.Activity{
		ID:        uuid.NewString(),
		Type:      domain.ActivityUserRegistered,
		UserID:    user.ID,
		User:      user.Name,
		Metadata:  map[string]string{"role": string(user.Role)},
		CreatedAt: s.now(),
	}
	if createdBy != "" {
		a.Metadata["created_by"] = createdBy
	}
	s.activity.Enqueue(a)
}

func (s *AuthService) simulateLatency() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

// succeed and fail emit the user-facing confirmation or error notice.
func (s *AuthService) succeed(op, title, description string) {
	metrics.AuthOperationsTotal.WithLabelValues(op, "ok").Inc()
	s.log.Info().Str("operation", op).Str("title", title).Msg(description)
}

func (s *AuthService) fail(op, title string, err error) {
	metrics.AuthOperationsTotal.WithLabelValues(op, failureReason(err)).Inc()
	s.log.Warn().Err(err).Str("operation", op).Msg(title)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrMissingRequiredField):
		return "missing_field"
	case errors.Is(err, domain.ErrInvalidField):
		return "invalid_field"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

func requireAdmin(sess *session.Session) error {
	if sess == nil || !sess.IsAuthenticated() || sess.Role() != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func profileChanged(a, b *domain.User) bool {
	return a.Name != b.Name || a.Email != b.Email || a.Role != b.Role ||
		a.Avatar != b.Avatar || a.ERPSystem != b.ERPSystem || a.Status != b.Status
}

func validStatus(st domain.UserStatus) bool {
	return st == domain.UserActive || st == domain.UserInactive
}

func sanitize(u *domain.User) *domain.User {
	out := *u
	out.PasswordHash = ""
	return &out
}
