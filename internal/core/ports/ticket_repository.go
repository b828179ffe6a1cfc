package ports

import (
	"context"
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// ListTicketsFilter carries all query parameters for listing tickets.
// ClientID is always enforced by the service layer (RBAC).
type ListTicketsFilter struct {
	ClientID   string // empty = no filter (staff); non-empty = scoped to client
	SupportID  string // optional: assignee
	Status     string // optional
	Priority   string // optional
	ERPSystem  string // optional
	Department string // optional
	Search     string // optional: partial match on id or title
	Page       int    // 1-based
	Limit      int    // max rows per page (capped at 100 by service)
}

// TicketRepository defines persistence operations for tickets.
type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	// FindByID retrieves a ticket by id.
	// When clientID is non-empty, the query is additionally filtered by client_id (for RBAC).
	FindByID(ctx context.Context, id string, clientID string) (*domain.Ticket, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Ticket, error)
	// List returns a page of tickets matching filter, newest first, and the total count.
	List(ctx context.Context, filter ListTicketsFilter) ([]*domain.Ticket, int64, error)
	// UpdateStatus sets the status and appends a history entry.
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, ts time.Time, actorID string) error
	Assign(ctx context.Context, id, supportID string, ts time.Time) error
	// CountByStatus counts tickets per status, optionally scoped to one client.
	CountByStatus(ctx context.Context, clientID string) (map[domain.TicketStatus]int64, error)
}

// MessageRepository stores ticket conversations.
type MessageRepository interface {
	Insert(ctx context.Context, m *domain.Message) error
	// ListByTicket returns the conversation oldest first.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
}
