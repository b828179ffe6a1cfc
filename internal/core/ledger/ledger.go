// Package ledger keeps the notifications visible to one authenticated
// session and derives its unread count.
//
// Entries are kept newest first. Every operation is total: unknown ids are
// ignored rather than reported. Only the read flag of an entry changes after
// it has been added.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// AlertFunc receives every newly added notification (the transient alert).
type AlertFunc func(domain.Notification)

// Ledger is safe for concurrent use.
type Ledger struct {
	mu    sync.RWMutex
	items []domain.Notification

	alert AlertFunc
	now   func() time.Time
	newID func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithAlert installs the transient alert hook.
func WithAlert(fn AlertFunc) Option { return func(l *Ledger) { l.alert = fn } }

// WithSeed preloads entries, given newest first.
func WithSeed(items []domain.Notification) Option {
	return func(l *Ledger) { l.items = append([]domain.Notification(nil), items...) }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

// New builds an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add stores n as unread at the head of the ledger and raises the alert.
func (l *Ledger) Add(n domain.NewNotification) domain.Notification {
	event := domain.Notification{
		ID:        l.newID(),
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    false,
		Timestamp: l.now(),
		LinkTo:    n.LinkTo,
		Category:  n.Category,
	}
	if event.Type == "" {
		event.Type = domain.NotificationInfo
	}
	if event.Category == "" {
		event.Category = domain.CategorySystem
	}

	l.mu.Lock()
	l.items = append([]domain.Notification{event}, l.items...)
	l.mu.Unlock()

	if l.alert != nil {
		l.alert(event)
	}
	return event
}

// MarkAsRead flags the entry with id as read.
func (l *Ledger) MarkAsRead(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].IsRead = true
			return
		}
	}
}

// MarkAllAsRead flags every entry as read.
func (l *Ledger) MarkAllAsRead() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		l.items[i].IsRead = true
	}
}

// Clear removes the entry with id.
func (l *Ledger) Clear(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return
		}
	}
}

// ClearAll empties the ledger.
func (l *Ledger) ClearAll() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
}

// UnreadCount is computed on every call.
func (l *Ledger) UnreadCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, it := range l.items {
		if !it.IsRead {
			n++
		}
	}
	return n
}

// List returns a copy of the entries, newest first.
func (l *Ledger) List() []domain.Notification {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Notification, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// DemoSeed is the fixed set every demo ledger starts with, relative to now.
func DemoSeed(now time.Time) []domain.Notification {
	return []domain.Notification{
		{
			ID: "1", Title: "New Ticket Assigned", Message: "Ticket #1234 has been assigned to you",
			Type: domain.NotificationInfo, Timestamp: now.Add(-5 * time.Minute),
			LinkTo: "/tickets", Category: domain.CategoryTicket,
		},
		{
			ID: "2", Title: "Chat Message", Message: "New message from Sarah Johnson",
			Type: domain.NotificationInfo, Timestamp: now.Add(-30 * time.Minute),
			LinkTo: "/chat", Category: domain.CategoryChat,
		},
		{
			ID: "3", Title: "System Update", Message: "System maintenance scheduled for tonight",
			Type: domain.NotificationWarning, IsRead: true, Timestamp: now.Add(-2 * time.Hour),
			Category: domain.CategorySystem,
		},
		{
			ID: "4", Title: "Ticket Resolved", Message: "Ticket #1228 has been marked as resolved",
			Type: domain.NotificationSuccess, IsRead: true, Timestamp: now.Add(-5 * time.Hour),
			LinkTo: "/tickets", Category: domain.CategoryTicket,
		},
		{
			ID: "5", Title: "New User Registered", Message: "John Smith has registered as a new client",
			Type: domain.NotificationInfo, IsRead: true, Timestamp: now.Add(-24 * time.Hour),
			LinkTo: "/users", Category: domain.CategoryUser,
		},
	}
}
