package handler

import (
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createTicketRequest struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	Priority    string   `json:"priority"    validate:"omitempty,oneof=low medium high critical"`
	ERPSystem   string   `json:"erp_system"  validate:"omitempty,oneof=s4_hana sap_bydesign acumatica"`
	Department  string   `json:"department"  validate:"omitempty,oneof=finance procurement sales manufacturing field_services construction project_management other"`
	Attachments []string `json:"attachments"`
}

type listTicketsQuery struct {
	Status     string `query:"status"      validate:"omitempty,oneof=open in_progress resolved closed"`
	Priority   string `query:"priority"    validate:"omitempty,oneof=low medium high critical"`
	ERPSystem  string `query:"erp_system"  validate:"omitempty,oneof=s4_hana sap_bydesign acumatica"`
	Department string `query:"department"`
	SupportID  string `query:"support_id"`
	Search     string `query:"search"`
	Page       int    `query:"page"        validate:"omitempty,min=1"`
	Limit      int    `query:"limit"       validate:"omitempty,min=1"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

type assignTicketRequest struct {
	SupportID string `json:"support_id" validate:"required"`
}

type messageRequest struct {
	Content string `json:"content" validate:"required"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// storage tags on the domain types.

type ticketLinks struct {
	Self     string `json:"self"`
	Messages string `json:"messages"`
}

type statusHistoryItemResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id,omitempty"`
}

type ticketResponse struct {
	ID            string                      `json:"id"`
	Title         string                      `json:"title"`
	Description   string                      `json:"description"`
	Status        string                      `json:"status"`
	Priority      string                      `json:"priority"`
	ERPSystem     string                      `json:"erp_system"`
	Department    string                      `json:"department"`
	ClientID      string                      `json:"client_id"`
	SupportID     string                      `json:"support_id,omitempty"`
	Attachments   []string                    `json:"attachments"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	StatusHistory []statusHistoryItemResponse `json:"status_history"`
	Links         ticketLinks                 `json:"_links"`
}

// ticketSummaryResponse is the lightweight item used in list responses.
// It omits description and status_history.
type ticketSummaryResponse struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Status     string      `json:"status"`
	Priority   string      `json:"priority"`
	ERPSystem  string      `json:"erp_system"`
	Department string      `json:"department"`
	ClientID   string      `json:"client_id"`
	SupportID  string      `json:"support_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Links      ticketLinks `json:"_links"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listTicketsResponse struct {
	Data       []ticketSummaryResponse `json:"data"`
	Pagination paginationResponse      `json:"pagination"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type listMessagesResponse struct {
	Data []messageResponse `json:"data"`
}

type dashboardStats struct {
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
	Closed     int64 `json:"closed"`
	Total      int64 `json:"total"`
	Users      int64 `json:"users"`
}

type dashboardResponse struct {
	Tickets          dashboardStats    `json:"tickets"`
	RecentActivities []domain.Activity `json:"recent_activities"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
