package ledger

import (
	"testing"
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

func seeded() *Ledger {
	return New(WithSeed([]domain.Notification{
		{ID: "n1", Title: "first", IsRead: false},
		{ID: "n2", Title: "second", IsRead: true},
	}))
}

func TestLedger_UnreadCountAndMarkAsRead(t *testing.T) {
	l := seeded()
	if got := l.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread, got %d", got)
	}
	l.MarkAsRead("n1")
	if got := l.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
}

func TestLedger_MarkAsRead_UnknownIDIsNoop(t *testing.T) {
	l := seeded()
	l.MarkAsRead("missing")
	if l.UnreadCount() != 1 || l.Len() != 2 {
		t.Fatalf("ledger changed: unread=%d len=%d", l.UnreadCount(), l.Len())
	}
}

func TestLedger_Add(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var alerted []domain.Notification
	l := New(
		WithSeed(DemoSeed(ts)),
		WithClock(func() time.Time { return ts }),
		WithAlert(func(n domain.Notification) { alerted = append(alerted, n) }),
	)
	before := l.Len()

	n := l.Add(domain.NewNotification{
		Title:    "Ticket updated",
		Message:  "Ticket TCK-1 moved to in_progress",
		Type:     domain.NotificationInfo,
		Category: domain.CategoryTicket,
		LinkTo:   "/tickets/TCK-1",
	})

	if l.Len() != before+1 {
		t.Fatalf("expected len %d, got %d", before+1, l.Len())
	}
	if n.IsRead {
		t.Error("new notification must be unread")
	}
	if !n.Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %v, got %v", ts, n.Timestamp)
	}
	if n.ID == "" {
		t.Error("expected generated id")
	}
	if first := l.List()[0]; first.ID != n.ID {
		t.Errorf("new notification must be first, got %q", first.ID)
	}
	if len(alerted) != 1 || alerted[0].ID != n.ID {
		t.Errorf("expected one alert for the new notification, got %d", len(alerted))
	}
}

func TestLedger_Add_IDsAreUnique(t *testing.T) {
	l := New()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := l.Add(domain.NewNotification{Title: "x"})
		if seen[n.ID] {
			t.Fatalf("duplicate id %q", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestLedger_Add_Defaults(t *testing.T) {
	n := New().Add(domain.NewNotification{Title: "bare"})
	if n.Type != domain.NotificationInfo || n.Category != domain.CategorySystem {
		t.Fatalf("unexpected defaults: %s %s", n.Type, n.Category)
	}
}

func TestLedger_MarkAllAsRead(t *testing.T) {
	l := New(WithSeed(DemoSeed(time.Now())))
	l.Add(domain.NewNotification{Title: "a"})
	l.Add(domain.NewNotification{Title: "b"})

	l.MarkAllAsRead()
	if got := l.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}

	empty := New()
	empty.MarkAllAsRead()
	if empty.UnreadCount() != 0 {
		t.Fatal("expected 0 unread on empty ledger")
	}
}

func TestLedger_ClearIsIdempotent(t *testing.T) {
	l := seeded()
	l.Clear("n1")
	afterOnce := l.List()
	l.Clear("n1")
	afterTwice := l.List()

	if len(afterOnce) != 1 || len(afterTwice) != 1 || afterTwice[0].ID != "n2" {
		t.Fatalf("unexpected ledger after clears: %+v", afterTwice)
	}
}

func TestLedger_ClearAll(t *testing.T) {
	l := seeded()
	l.ClearAll()
	if l.Len() != 0 || l.UnreadCount() != 0 {
		t.Fatalf("expected empty ledger, len=%d", l.Len())
	}
}

func TestLedger_ListIsACopy(t *testing.T) {
	l := seeded()
	items := l.List()
	items[0].IsRead = true
	if l.UnreadCount() != 1 {
		t.Fatal("mutating List result changed the ledger")
	}
}

func TestDemoSeed(t *testing.T) {
	now := time.Now()
	l := New(WithSeed(DemoSeed(now)))
	if l.Len() != 5 {
		t.Fatalf("expected 5 seeded notifications, got %d", l.Len())
	}
	if l.UnreadCount() != 2 {
		t.Fatalf("expected 2 unread seeded notifications, got %d", l.UnreadCount())
	}
}
