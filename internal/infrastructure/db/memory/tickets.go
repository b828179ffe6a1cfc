package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

// TicketRepository keeps tickets in a map keyed by id.
type TicketRepository struct {
	mu            sync.RWMutex
	byID          map[string]*domain.Ticket
	byIdempotency map[string]string
}

func NewTicketRepository() *TicketRepository {
	return &TicketRepository{
		byID:          make(map[string]*domain.Ticket),
		byIdempotency: make(map[string]string),
	}
}

func (r *TicketRepository) Create(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[t.ID]; ok {
		return domain.ErrDuplicateTicket
	}
	if _, ok := r.byIdempotency[t.IdempotencyKey]; ok && t.IdempotencyKey != "" {
		return domain.ErrDuplicateTicket
	}
	r.byID[t.ID] = cloneTicket(t)
	if t.IdempotencyKey != "" {
		r.byIdempotency[t.IdempotencyKey] = t.ID
	}
	return nil
}

func (r *TicketRepository) FindByID(_ context.Context, id, clientID string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok || (clientID != "" && t.ClientID != clientID) {
		return nil, domain.ErrTicketNotFound
	}
	return cloneTicket(t), nil
}

func (r *TicketRepository) FindByIdempotencyKey(_ context.Context, key string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byIdempotency[key]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return cloneTicket(r.byID[id]), nil
}

// List applies the same filters as the Mongo repository, newest first.
func (r *TicketRepository) List(_ context.Context, f ports.ListTicketsFilter) ([]*domain.Ticket, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(f.Search)
	matched := make([]*domain.Ticket, 0)
	for _, t := range r.byID {
		if f.ClientID != "" && t.ClientID != f.ClientID {
			continue
		}
		if f.SupportID != "" && t.SupportID != f.SupportID {
			continue
		}
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if f.Priority != "" && string(t.Priority) != f.Priority {
			continue
		}
		if f.ERPSystem != "" && string(t.ERPSystem) != f.ERPSystem {
			continue
		}
		if f.Department != "" && string(t.Department) != f.Department {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.ID), search) &&
			!strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	limit := f.Limit
	if limit <= 0 {
		limit = len(matched)
	}
	skip := (f.Page - 1) * limit
	if skip < 0 {
		skip = 0
	}
	if skip > len(matched) {
		return []*domain.Ticket{}, total, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*domain.Ticket, 0, end-skip)
	for _, t := range matched[skip:end] {
		page = append(page, cloneTicket(t))
	}
	return page, total, nil
}

func (r *TicketRepository) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, ts time.Time, actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	t.Status = status
	t.UpdatedAt = ts
	t.StatusHistory = append(t.StatusHistory, domain.StatusHistoryEntry{Status: status, Timestamp: ts, ActorID: actorID})
	return nil
}

func (r *TicketRepository) Assign(_ context.Context, id, supportID string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	t.SupportID = supportID
	t.UpdatedAt = ts
	return nil
}

func (r *TicketRepository) CountByStatus(_ context.Context, clientID string) (map[domain.TicketStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[domain.TicketStatus]int64)
	for _, t := range r.byID {
		if clientID != "" && t.ClientID != clientID {
			continue
		}
		out[t.Status]++
	}
	return out, nil
}

func cloneTicket(t *domain.Ticket) *domain.Ticket {
	c := *t
	c.Attachments = append([]string(nil), t.Attachments...)
	c.StatusHistory = append([]domain.StatusHistoryEntry(nil), t.StatusHistory...)
	return &c
}

// MessageRepository keeps ticket conversations in insertion order.
type MessageRepository struct {
	mu       sync.RWMutex
	byTicket map[string][]domain.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{byTicket: make(map[string][]domain.Message)}
}

func (r *MessageRepository) Insert(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTicket[m.TicketID] = append(r.byTicket[m.TicketID], *m)
	return nil
}

func (r *MessageRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.byTicket[ticketID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
