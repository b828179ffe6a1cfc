package memory

import (
	"context"
	"sync"
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

type snapshot struct {
	value     []byte
	expiresAt time.Time
}

// SnapshotStore keeps session snapshots in a map. Snapshots expire ttl after
// their last save, like the redis store; ttl <= 0 keeps them forever.
type SnapshotStore struct {
	mu   sync.Mutex
	data map[string]snapshot
	ttl  time.Duration
	now  func() time.Time
}

func NewSnapshotStore(ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{data: make(map[string]snapshot), ttl: ttl, now: time.Now}
}

func (s *SnapshotStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return nil, session.ErrNoSnapshot
	}
	if s.expired(v, s.now()) {
		delete(s.data, key)
		return nil, session.ErrNoSnapshot
	}
	return append([]byte(nil), v.value...), nil
}

func (s *SnapshotStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, v := range s.data {
		if s.expired(v, now) {
			delete(s.data, k)
		}
	}
	entry := snapshot{value: append([]byte(nil), value...)}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	s.data[key] = entry
	return nil
}

func (s *SnapshotStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len returns the number of stored snapshots, expired ones included until
// the next Save.
func (s *SnapshotStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *SnapshotStore) expired(v snapshot, now time.Time) bool {
	return !v.expiresAt.IsZero() && now.After(v.expiresAt)
}

// DedupChecker remembers processed activity ids for ttl.
type DedupChecker struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewDedupChecker(ttl time.Duration) *DedupChecker {
	return &DedupChecker{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (d *DedupChecker) IsDuplicate(_ context.Context, activityID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.seen[activityID]
	if !ok {
		return false, nil
	}
	if d.now().After(exp) {
		delete(d.seen, activityID)
		return false, nil
	}
	return true, nil
}

func (d *DedupChecker) Mark(_ context.Context, activityID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, exp := range d.seen {
		if now.After(exp) {
			delete(d.seen, id)
		}
	}
	d.seen[activityID] = now.Add(d.ttl)
	return nil
}

type limiterEntry struct {
	failures     int
	windowEnd    time.Time
	blockedUntil time.Time
}

// LoginLimiter locks an email out for lockout after maxFailures failed
// attempts within the same window.
type LoginLimiter struct {
	mu          sync.Mutex
	entries     map[string]*limiterEntry
	maxFailures int
	lockout     time.Duration
	now         func() time.Time
}

func NewLoginLimiter(maxFailures int, lockout time.Duration) *LoginLimiter {
	return &LoginLimiter{
		entries:     make(map[string]*limiterEntry),
		maxFailures: maxFailures,
		lockout:     lockout,
		now:         time.Now,
	}
}

func (l *LoginLimiter) Allow(_ context.Context, email string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[email]
	if !ok {
		return true, 0, nil
	}
	now := l.now()
	if e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

func (l *LoginLimiter) Success(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, email)
	return nil
}

func (l *LoginLimiter) Failure(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[email]
	if !ok || now.After(e.windowEnd) {
		e = &limiterEntry{windowEnd: now.Add(l.lockout)}
		l.entries[email] = e
	}
	e.failures++
	if l.maxFailures > 0 && e.failures >= l.maxFailures {
		e.blockedUntil = now.Add(l.lockout)
		e.failures = 0
		e.windowEnd = e.blockedUntil
	}
	return nil
}
