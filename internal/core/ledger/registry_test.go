package ledger

import (
	"testing"
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

func TestRegistry_OpenIsIdempotent(t *testing.T) {
	r := NewRegistry(nil, 0)
	a := r.Open("s1", "u1", domain.RoleClient)
	b := r.Open("s1", "u1", domain.RoleClient)
	if a != b {
		t.Fatal("expected the same ledger for the same session")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 ledger, got %d", r.Len())
	}
}

func TestRegistry_FactoryIsUsed(t *testing.T) {
	calls := 0
	r := NewRegistry(func(string) *Ledger {
		calls++
		return New(WithSeed([]domain.Notification{{ID: "seed"}}))
	}, 0)
	l := r.Open("s1", "u1", domain.RoleAdmin)
	if calls != 1 || l.Len() != 1 {
		t.Fatalf("factory not applied: calls=%d len=%d", calls, l.Len())
	}
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry(nil, 0)
	r.Open("s1", "u1", domain.RoleClient)
	r.Close("s1")
	if _, ok := r.Get("s1"); ok {
		t.Fatal("ledger still open after Close")
	}
	r.Close("s1")
}

func TestRegistry_ForUserAndRoles(t *testing.T) {
	r := NewRegistry(nil, 0)
	r.Open("s1", "client-1", domain.RoleClient)
	r.Open("s2", "client-1", domain.RoleClient)
	r.Open("s3", "support-1", domain.RoleSupport)
	r.Open("s4", "admin-1", domain.RoleAdmin)

	if got := len(r.ForUser("client-1")); got != 2 {
		t.Fatalf("expected 2 ledgers for client-1, got %d", got)
	}
	if got := len(r.ForRoles("", domain.RoleSupport, domain.RoleAdmin)); got != 2 {
		t.Fatalf("expected 2 staff ledgers, got %d", got)
	}
	if got := len(r.ForRoles("admin-1", domain.RoleSupport, domain.RoleAdmin)); got != 1 {
		t.Fatalf("expected actor to be excluded, got %d", got)
	}
}

func TestRegistry_ExpiredSessionsAreClosed(t *testing.T) {
	now := time.Now()
	r := NewRegistry(nil, time.Hour)
	r.now = func() time.Time { return now }

	r.Open("old", "client-1", domain.RoleClient)
	now = now.Add(30 * time.Minute)
	r.Open("young", "client-1", domain.RoleClient)

	now = now.Add(45 * time.Minute)
	if _, ok := r.Get("old"); ok {
		t.Fatal("expired ledger must not be returned")
	}
	if got := len(r.ForUser("client-1")); got != 1 {
		t.Fatalf("expected fan-out to skip the expired session, got %d ledgers", got)
	}
	if got := len(r.ForRoles("", domain.RoleClient)); got != 1 {
		t.Fatalf("expected role fan-out to skip the expired session, got %d ledgers", got)
	}

	if n := r.Sweep(); n != 1 || r.Len() != 1 {
		t.Fatalf("expected 1 ledger swept and 1 left, swept %d left %d", n, r.Len())
	}

	now = now.Add(time.Hour)
	r.Open("fresh", "client-2", domain.RoleClient)
	if r.Len() != 1 {
		t.Fatalf("Open must sweep expired ledgers, %d open", r.Len())
	}
}

func TestRegistry_CloseUser(t *testing.T) {
	r := NewRegistry(nil, 0)
	r.Open("s1", "client-1", domain.RoleClient)
	r.Open("s2", "client-1", domain.RoleClient)
	r.Open("s3", "client-2", domain.RoleClient)

	if n := r.CloseUser("client-1"); n != 2 {
		t.Fatalf("expected 2 ledgers closed, got %d", n)
	}
	if r.Len() != 1 {
		t.Fatalf("expected other users untouched, %d open", r.Len())
	}
}
