package ports

import (
	"context"
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// Actor identifies the caller of a ticket operation. It is derived from the
// authenticated session by the transport layer.
type Actor struct {
	ID        string
	Name      string
	Role      domain.Role
	ERPSystem domain.ERPSystem
}

// ActorFromUser builds the actor for an identity.
func ActorFromUser(u domain.User) Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role, ERPSystem: u.ERPSystem}
}

// CreateTicketInput carries all data needed to open a new ticket.
type CreateTicketInput struct {
	Actor          Actor
	Title          string
	Description    string
	Priority       domain.TicketPriority
	ERPSystem      domain.ERPSystem // defaults to the client's own system
	Department     domain.Department
	Attachments    []string
	IdempotencyKey string
}

// TicketResult is returned by the service after creating a ticket.
type TicketResult struct {
	Ticket *domain.Ticket
	// AlreadyExisted is true when the Idempotency-Key matched an existing ticket.
	AlreadyExisted bool
}

// ListTicketsInput carries all parameters for the list endpoint.
type ListTicketsInput struct {
	Actor      Actor
	SupportID  string
	Status     string
	Priority   string
	ERPSystem  string
	Department string
	Search     string
	Page       int
	Limit      int
}

// ListTicketsResult is returned by ListTickets.
type ListTicketsResult struct {
	Items      []*domain.Ticket
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// Dashboard is the per-role overview.
type Dashboard struct {
	OpenTickets       int64
	InProgressTickets int64
	ResolvedTickets   int64
	ClosedTickets     int64
	TotalTickets      int64
	ActiveUsers       int64 // identities not marked inactive
	RecentActivities  []domain.Activity
	GeneratedAt       time.Time
}

// TicketService defines use-case operations for tickets.
type TicketService interface {
	CreateTicket(ctx context.Context, input CreateTicketInput) (*TicketResult, error)
	GetTicket(ctx context.Context, actor Actor, id string) (*domain.Ticket, error)
	ListTickets(ctx context.Context, input ListTicketsInput) (*ListTicketsResult, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, status domain.TicketStatus) (*domain.Ticket, error)
	AssignTicket(ctx context.Context, actor Actor, id, supportID string) (*domain.Ticket, error)
	AddMessage(ctx context.Context, actor Actor, ticketID, content string) (*domain.Message, error)
	ListMessages(ctx context.Context, actor Actor, ticketID string) ([]domain.Message, error)
	Dashboard(ctx context.Context, actor Actor) (*Dashboard, error)
}
