package domain

import "time"

// TicketStatus represents the lifecycle state of a support ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[TicketStatus][]TicketStatus{
	StatusOpen:       {StatusInProgress, StatusClosed},
	StatusInProgress: {StatusResolved, StatusOpen},
	StatusResolved:   {StatusClosed, StatusInProgress},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// TicketPriority ranks the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// Department is the business area a ticket is filed against.
type Department string

const (
	DeptFinance           Department = "finance"
	DeptProcurement       Department = "procurement"
	DeptSales             Department = "sales"
	DeptManufacturing     Department = "manufacturing"
	DeptFieldServices     Department = "field_services"
	DeptConstruction      Department = "construction"
	DeptProjectManagement Department = "project_management"
	DeptOther             Department = "other"
)

// StatusHistoryEntry records a single status transition on a ticket.
type StatusHistoryEntry struct {
	Status    TicketStatus `json:"status" bson:"status"`
	Timestamp time.Time    `json:"timestamp" bson:"timestamp"`
	ActorID   string       `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
}

// Ticket is the core aggregate root of the support desk.
type Ticket struct {
	ID             string               `json:"id" bson:"_id"`
	Title          string               `json:"title" bson:"title"`
	Description    string               `json:"description" bson:"description"`
	Status         TicketStatus         `json:"status" bson:"status"`
	Priority       TicketPriority       `json:"priority" bson:"priority"`
	ERPSystem      ERPSystem            `json:"erp_system" bson:"erp_system"`
	Department     Department           `json:"department" bson:"department"`
	ClientID       string               `json:"client_id" bson:"client_id"`
	SupportID      string               `json:"support_id,omitempty" bson:"support_id,omitempty"`
	Attachments    []string             `json:"attachments,omitempty" bson:"attachments,omitempty"`
	CreatedAt      time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at" bson:"updated_at"`
	IdempotencyKey string               `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	StatusHistory  []StatusHistoryEntry `json:"status_history" bson:"status_history"`
}

// Message is one entry in a ticket conversation.
type Message struct {
	ID        string    `json:"id" bson:"_id"`
	TicketID  string    `json:"ticket_id" bson:"ticket_id"`
	SenderID  string    `json:"sender_id" bson:"sender_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
