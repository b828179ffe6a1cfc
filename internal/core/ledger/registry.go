package ledger

import (
	"sync"
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// Factory builds the ledger of a newly opened session.
type Factory func(sessionID string) *Ledger

type entry struct {
	ledger    *Ledger
	userID    string
	role      domain.Role
	expiresAt time.Time
}

// Registry owns the ledger of every open session. A ledger lives from Open
// until Close, or until its session expires ttl after Open.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	factory Factory
	ttl     time.Duration
	now     func() time.Time
}

// NewRegistry returns an empty registry. A nil factory builds bare ledgers;
// ttl <= 0 keeps ledgers until Close.
func NewRegistry(factory Factory, ttl time.Duration) *Registry {
	if factory == nil {
		factory = func(string) *Ledger { return New() }
	}
	return &Registry{entries: make(map[string]*entry), factory: factory, ttl: ttl, now: time.Now}
}

// Open returns the ledger of sessionID, creating it on first use. The owner
// is refreshed on every call. Expired ledgers are swept first.
func (r *Registry) Open(sessionID, userID string, role domain.Role) *Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)
	if e, ok := r.entries[sessionID]; ok {
		e.userID, e.role = userID, role
		return e.ledger
	}
	e := &entry{ledger: r.factory(sessionID), userID: userID, role: role}
	if r.ttl > 0 {
		e.expiresAt = now.Add(r.ttl)
	}
	r.entries[sessionID] = e
	return e.ledger
}

// Get returns the ledger of sessionID if it is open.
func (r *Registry) Get(sessionID string) (*Ledger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[sessionID]
	if !ok || e.expired(r.now()) {
		return nil, false
	}
	return e.ledger, true
}

// Close tears down the ledger of sessionID.
func (r *Registry) Close(sessionID string) {
	r.mu.Lock()
	delete(r.entries, sessionID)
	r.mu.Unlock()
}

// CloseUser tears down the ledgers of every session owned by userID and
// returns how many were closed.
func (r *Registry) CloseUser(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.entries {
		if e.userID == userID {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

// Sweep closes every expired ledger and returns how many were closed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

func (r *Registry) sweepLocked(now time.Time) int {
	n := 0
	for id, e := range r.entries {
		if e.expired(now) {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of open ledgers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ForUser returns the live ledgers of every session owned by userID.
func (r *Registry) ForUser(userID string) []*Ledger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	var out []*Ledger
	for _, e := range r.entries {
		if e.userID == userID && !e.expired(now) {
			out = append(out, e.ledger)
		}
	}
	return out
}

// ForRoles returns the live ledgers of every session whose owner has one of
// roles, skipping sessions owned by exceptUserID.
func (r *Registry) ForRoles(exceptUserID string, roles ...domain.Role) []*Ledger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	var out []*Ledger
	for _, e := range r.entries {
		if e.userID == exceptUserID || e.expired(now) {
			continue
		}
		for _, role := range roles {
			if e.role == role {
				out = append(out, e.ledger)
				break
			}
		}
	}
	return out
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}
