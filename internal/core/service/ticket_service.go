package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/akilawedasinghe/symetrix/internal/api/metrics"
	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	recentActivity  = 10
	idAttempts      = 5
)

type TicketService struct {
	repo       ports.TicketRepository
	messages   ports.MessageRepository
	activities ports.ActivityRepository
	users      ports.UserRepository
	publisher  ports.ActivityPublisher
	logger     zerolog.Logger
	now        func() time.Time
	newID      func() (string, error)
}

func NewTicketService(
	repo ports.TicketRepository,
	messages ports.MessageRepository,
	activities ports.ActivityRepository,
	users ports.UserRepository,
	publisher ports.ActivityPublisher,
	logger zerolog.Logger,
) *TicketService {
	return &TicketService{
		repo:       repo,
		messages:   messages,
		activities: activities,
		users:      users,
		publisher:  publisher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      newTicketID,
	}
}

// CreateTicket opens a new ticket for a client. If an idempotency key is
// provided and already seen, the previously created ticket is returned
// without side effects.
func (s *TicketService) CreateTicket(ctx context.Context, input ports.CreateTicketInput) (*ports.TicketResult, error) {
	if input.Actor.Role != domain.RoleClient {
		return nil, domain.ErrForbidden
	}

	if input.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, input.IdempotencyKey)
		if err == nil && existing != nil && existing.ClientID == input.Actor.ID {
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Str("ticket_id", existing.ID).Msg("idempotent replay")
			return &ports.TicketResult{Ticket: existing, AlreadyExisted: true}, nil
		}
	}

	if input.Title == "" || input.Description == "" {
		return nil, fmt.Errorf("%w: title and description are required", domain.ErrMissingRequiredField)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	dept := input.Department
	if dept == "" {
		dept = domain.DeptOther
	}
	erp := input.ERPSystem
	if erp == "" {
		erp = input.Actor.ERPSystem
	}
	if erp != "" && !erp.Valid() {
		return nil, fmt.Errorf("%w: erp system %q", domain.ErrInvalidField, erp)
	}

	now := s.now()
	ticket := &domain.Ticket{
		Title:          input.Title,
		Description:    input.Description,
		Status:         domain.StatusOpen,
		Priority:       priority,
		ERPSystem:      erp,
		Department:     dept,
		ClientID:       input.Actor.ID,
		Attachments:    input.Attachments,
		CreatedAt:      now,
		UpdatedAt:      now,
		IdempotencyKey: input.IdempotencyKey,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.StatusOpen, Timestamp: now, ActorID: input.Actor.ID},
		},
	}

	if err := s.insert(ctx, ticket); err != nil {
		if errors.Is(err, domain.ErrDuplicateTicket) && input.IdempotencyKey != "" {
			// A concurrent request with the same key won the insert.
			if existing, findErr := s.repo.FindByIdempotencyKey(ctx, input.IdempotencyKey); findErr == nil && existing.ClientID == input.Actor.ID {
				return &ports.TicketResult{Ticket: existing, AlreadyExisted: true}, nil
			}
		}
		s.logger.Error().Err(err).Msg("failed to create ticket")
		return nil, err
	}

	metrics.TicketsCreatedTotal.WithLabelValues(string(priority)).Inc()
	s.logger.Info().Str("ticket_id", ticket.ID).Str("client_id", input.Actor.ID).Msg("ticket created")
	s.publish(domain.ActivityTicketCreated, ticket, input.Actor, map[string]string{"priority": string(priority)})

	return &ports.TicketResult{Ticket: ticket}, nil
}

// insert stores ticket under a fresh id, drawing a new one while the id is
// taken. An idempotency key collision is returned as is.
func (s *TicketService) insert(ctx context.Context, ticket *domain.Ticket) error {
	for attempt := 1; ; attempt++ {
		id, err := s.newID()
		if err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		ticket.ID = id

		err = s.repo.Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateTicket) || attempt == idAttempts {
			return fmt.Errorf("create ticket: %w", err)
		}
		if ticket.IdempotencyKey != "" {
			if _, findErr := s.repo.FindByIdempotencyKey(ctx, ticket.IdempotencyKey); findErr == nil {
				return fmt.Errorf("create ticket: %w", err)
			}
		}
		s.logger.Warn().Str("ticket_id", id).Int("attempt", attempt).Msg("ticket id taken, drawing another")
	}
}

// GetTicket retrieves a single ticket. Clients only see their own tickets;
// anything else is reported as not found.
func (s *TicketService) GetTicket(ctx context.Context, actor ports.Actor, id string) (*domain.Ticket, error) {
	return s.repo.FindByID(ctx, id, clientScope(actor))
}

// ListTickets returns a filtered, paginated page of tickets.
func (s *TicketService) ListTickets(ctx context.Context, input ports.ListTicketsInput) (*ports.ListTicketsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, total, err := s.repo.List(ctx, ports.ListTicketsFilter{
		ClientID:   clientScope(input.Actor),
		SupportID:  input.SupportID,
		Status:     input.Status,
		Priority:   input.Priority,
		ERPSystem:  input.ERPSystem,
		Department: input.Department,
		Search:     input.Search,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListTicketsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus moves a ticket through its state machine. Staff may apply any
// valid transition; a client may only close its own ticket.
func (s *TicketService) UpdateStatus(ctx context.Context, actor ports.Actor, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidField, status)
	}

	ticket, err := s.repo.FindByID(ctx, id, clientScope(actor))
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleClient && status != domain.StatusClosed {
		return nil, domain.ErrForbidden
	}
	if !ticket.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("update status: %w (from %s to %s)", domain.ErrInvalidTransition, ticket.Status, status)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, id, status, now, actor.ID); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	ticket.Status = status
	ticket.UpdatedAt = now
	ticket.StatusHistory = append(ticket.StatusHistory, domain.StatusHistoryEntry{Status: status, Timestamp: now, ActorID: actor.ID})

	metrics.TicketStatusChangesTotal.WithLabelValues(string(status)).Inc()
	kind := domain.ActivityStatusChanged
	if status == domain.StatusResolved {
		kind = domain.ActivityTicketResolved
	}
	s.publish(kind, ticket, actor, map[string]string{"status": string(status)})

	return ticket, nil
}

// AssignTicket hands a ticket to a support agent.
func (s *TicketService) AssignTicket(ctx context.Context, actor ports.Actor, id, supportID string) (*domain.Ticket, error) {
	if !actor.Role.Staff() {
		return nil, domain.ErrForbidden
	}
	if supportID == "" {
		return nil, fmt.Errorf("%w: support_id", domain.ErrMissingRequiredField)
	}

	agent, err := s.users.FindByID(ctx, supportID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown support agent %q", domain.ErrInvalidField, supportID)
		}
		return nil, err
	}
	if agent.Role != domain.RoleSupport {
		return nil, fmt.Errorf("%w: %q is not a support agent", domain.ErrInvalidField, supportID)
	}

	ticket, err := s.repo.FindByID(ctx, id, "")
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.Assign(ctx, id, supportID, now); err != nil {
		return nil, fmt.Errorf("assign ticket: %w", err)
	}
	ticket.SupportID = supportID
	ticket.UpdatedAt = now

	s.publish(domain.ActivityTicketAssigned, ticket, actor, map[string]string{"support_id": supportID})
	return ticket, nil
}

// AddMessage appends a message to the ticket conversation.
func (s *TicketService) AddMessage(ctx context.Context, actor ports.Actor, ticketID, content string) (*domain.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content", domain.ErrMissingRequiredField)
	}
	ticket, err := s.repo.FindByID(ctx, ticketID, clientScope(actor))
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		SenderID:  actor.ID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}

	s.publish(domain.ActivityMessageSent, ticket, actor, map[string]string{"message_id": msg.ID})
	return msg, nil
}

// ListMessages returns the ticket conversation, oldest first.
func (s *TicketService) ListMessages(ctx context.Context, actor ports.Actor, ticketID string) ([]domain.Message, error) {
	if _, err := s.repo.FindByID(ctx, ticketID, clientScope(actor)); err != nil {
		return nil, err
	}
	return s.messages.ListByTicket(ctx, ticketID)
}

// Dashboard summarises tickets for the actor's role. Clients only count
// and see activity on their own tickets.
func (s *TicketService) Dashboard(ctx context.Context, actor ports.Actor) (*ports.Dashboard, error) {
	scope := clientScope(actor)
	counts, err := s.repo.CountByStatus(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	users, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	recent, err := s.activities.Recent(ctx, recentActivity, scope)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	d := &ports.Dashboard{
		OpenTickets:       counts[domain.StatusOpen],
		InProgressTickets: counts[domain.StatusInProgress],
		ResolvedTickets:   counts[domain.StatusResolved],
		ClosedTickets:     counts[domain.StatusClosed],
		ActiveUsers:       users,
		RecentActivities:  recent,
		GeneratedAt:       s.now(),
	}
	d.TotalTickets = d.OpenTickets + d.InProgressTickets + d.ResolvedTickets + d.ClosedTickets
	return d, nil
}

func (s *TicketService) publish(kind domain.ActivityType, ticket *domain.Ticket, actor ports.Actor, meta map[string]string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Enqueue(domain.Activity{
		ID:        uuid.NewString(),
		Type:      kind,
		TicketID:  ticket.ID,
		ClientID:  ticket.ClientID,
		UserID:    actor.ID,
		User:      actor.Name,
		Metadata:  meta,
		CreatedAt: s.now(),
	})
}

// clientScope returns the client filter RBAC requires for actor.
func clientScope(actor ports.Actor) string {
	if actor.Role == domain.RoleClient {
		return actor.ID
	}
	return ""
}

// newTicketID draws a ticket number of the form TCK-XXXXXXXX.
func newTicketID() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("TCK-%08X", b[:]), nil
}
