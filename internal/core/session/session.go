// Package session holds the authenticated identity of one portal client.
//
// A Session is either empty or references exactly one identity. It moves
// through Unauthenticated, Authenticating and Authenticated, and mirrors the
// current identity into a named snapshot so it survives a restart:
//
//	Unauthenticated --Authenticate--> Authenticating --ok--> Authenticated
//	                                                 --err--> previous state
//	Authenticated   --Logout--> Unauthenticated
//
// Restore loads the snapshot once and trusts it without re-validating the
// credential. Callers holding a directory reconcile the restored identity
// with Refresh, or drop it with Logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// SnapshotName is the fixed name of the persisted identity snapshot.
const SnapshotName = "user"

// ErrNoSnapshot is returned by a SnapshotStore when nothing is stored under a key.
var ErrNoSnapshot = errors.New("session: no snapshot")

// ErrCorruptSnapshot is returned by Restore when the stored snapshot could
// not be decoded. The snapshot has already been removed.
var ErrCorruptSnapshot = errors.New("session: corrupt snapshot")

// SnapshotStore is the key-value boundary the session persists through.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}

// ErrNotAuthenticated is returned by Refresh on a session with no identity.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// State is the authentication state of a session.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session is the handle every identity-dependent operation receives.
type Session struct {
	id    string
	store SnapshotStore

	// authMu serializes Authenticate calls; mu guards the fields below.
	authMu sync.Mutex
	mu     sync.RWMutex
	state  State
	user   *domain.User
}

// New returns an unauthenticated session. id namespaces the snapshot; an
// empty id uses the bare SnapshotName key.
func New(id string, store SnapshotStore) *Session {
	return &Session{id: id, store: store}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Key returns the snapshot key of this session.
func (s *Session) Key() string {
	if s.id == "" {
		return SnapshotName
	}
	return s.id + ":" + SnapshotName
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether an identity is attached.
func (s *Session) IsAuthenticated() bool { return s.State() == Authenticated }

// IsLoading reports whether an authentication is in flight.
func (s *Session) IsLoading() bool { return s.State() == Authenticating }

// User returns a copy of the current identity, or nil.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Role returns the role of the current identity, or "" when unauthenticated.
func (s *Session) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// Restore loads the snapshot, if any, and attaches it as the current identity.
func (s *Session) Restore(ctx context.Context) error {
	raw, err := s.store.Load(ctx, s.Key())
	if errors.Is(err, ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("session restore: %w", err)
	}

	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == "" {
		if clearErr := s.store.Clear(ctx, s.Key()); clearErr != nil {
			return fmt.Errorf("session restore: clear corrupt snapshot: %w", clearErr)
		}
		return ErrCorruptSnapshot
	}

	s.mu.Lock()
	s.user = &u
	s.state = Authenticated
	s.mu.Unlock()
	return nil
}

// Authenticate runs fn while the session is Authenticating. When fn returns
// an identity it becomes current and is persisted. When fn fails, or returns
// no identity, the session goes back to the state it had before.
func (s *Session) Authenticate(ctx context.Context, fn func() (*domain.User, error)) (*domain.User, error) {
	s.authMu.Lock()
	defer s.authMu.Unlock()

	s.mu.Lock()
	prevState, prevUser := s.state, s.user
	s.state = Authenticating
	s.mu.Unlock()

	rollback := func() {
		s.mu.Lock()
		s.state, s.user = prevState, prevUser
		s.mu.Unlock()
	}

	u, err := fn()
	if err != nil || u == nil {
		rollback()
		return nil, err
	}

	current := *u
	raw, err := json.Marshal(current)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("session snapshot: %w", err)
	}
	if err := s.store.Save(ctx, s.Key(), raw); err != nil {
		rollback()
		return nil, fmt.Errorf("session snapshot: %w", err)
	}

	s.mu.Lock()
	s.user = &current
	s.state = Authenticated
	s.mu.Unlock()

	out := current
	return &out, nil
}

// Refresh replaces the identity of an authenticated session with u and
// rewrites the snapshot. The session is left unchanged when saving fails.
func (s *Session) Refresh(ctx context.Context, u domain.User) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("session snapshot: %w", err)
	}
	if err := s.store.Save(ctx, s.Key(), raw); err != nil {
		return fmt.Errorf("session snapshot: %w", err)
	}

	s.mu.Lock()
	if s.state == Authenticated {
		s.user = &u
	}
	s.mu.Unlock()
	return nil
}

// Logout detaches the identity and removes the snapshot. The in-memory
// session is cleared even when removing the snapshot fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.state = Unauthenticated
	s.mu.Unlock()

	if err := s.store.Clear(ctx, s.Key()); err != nil {
		return fmt.Errorf("session logout: %w", err)
	}
	return nil
}
