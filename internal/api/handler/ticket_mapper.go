package handler

import (
	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createTicketRequest, actor ports.Actor, idempotencyKey string) ports.CreateTicketInput {
	return ports.CreateTicketInput{
		Actor:          actor,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       domain.TicketPriority(req.Priority),
		ERPSystem:      domain.ERPSystem(req.ERPSystem),
		Department:     domain.Department(req.Department),
		Attachments:    req.Attachments,
		IdempotencyKey: idempotencyKey,
	}
}

func toListInput(q listTicketsQuery, actor ports.Actor) ports.ListTicketsInput {
	return ports.ListTicketsInput{
		Actor:      actor,
		SupportID:  q.SupportID,
		Status:     q.Status,
		Priority:   q.Priority,
		ERPSystem:  q.ERPSystem,
		Department: q.Department,
		Search:     q.Search,
		Page:       q.Page,
		Limit:      q.Limit,
	}
}

// --- Service result → HTTP response ---

func linksFor(id string) ticketLinks {
	return ticketLinks{
		Self:     "/v1/tickets/" + id,
		Messages: "/v1/tickets/" + id + "/messages",
	}
}

func toTicketResponse(t *domain.Ticket) ticketResponse {
	attachments := t.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return ticketResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		ERPSystem:     string(t.ERPSystem),
		Department:    string(t.Department),
		ClientID:      t.ClientID,
		SupportID:     t.SupportID,
		Attachments:   attachments,
		CreatedAt:     t.CreatedAt.UTC(),
		UpdatedAt:     t.UpdatedAt.UTC(),
		StatusHistory: toStatusHistoryResponse(t.StatusHistory),
		Links:         linksFor(t.ID),
	}
}

func toStatusHistoryResponse(items []domain.StatusHistoryEntry) []statusHistoryItemResponse {
	out := make([]statusHistoryItemResponse, len(items))
	for i, item := range items {
		out[i] = statusHistoryItemResponse{
			Status:    string(item.Status),
			Timestamp: item.Timestamp.UTC(),
			ActorID:   item.ActorID,
		}
	}
	return out
}

func toSummaryResponse(t *domain.Ticket) ticketSummaryResponse {
	return ticketSummaryResponse{
		ID:         t.ID,
		Title:      t.Title,
		Status:     string(t.Status),
		Priority:   string(t.Priority),
		ERPSystem:  string(t.ERPSystem),
		Department: string(t.Department),
		ClientID:   t.ClientID,
		SupportID:  t.SupportID,
		CreatedAt:  t.CreatedAt.UTC(),
		UpdatedAt:  t.UpdatedAt.UTC(),
		Links:      linksFor(t.ID),
	}
}

func toListResponse(r *ports.ListTicketsResult) listTicketsResponse {
	items := make([]ticketSummaryResponse, len(r.Items))
	for i, t := range r.Items {
		items[i] = toSummaryResponse(t)
	}
	return listTicketsResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		TicketID:  m.TicketID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func toMessagesResponse(msgs []domain.Message) listMessagesResponse {
	out := make([]messageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = toMessageResponse(m)
	}
	return listMessagesResponse{Data: out}
}

func toDashboardResponse(d *ports.Dashboard) dashboardResponse {
	recent := d.RecentActivities
	if recent == nil {
		recent = []domain.Activity{}
	}
	return dashboardResponse{
		Tickets: dashboardStats{
			Open:       d.OpenTickets,
			InProgress: d.InProgressTickets,
			Resolved:   d.ResolvedTickets,
			Closed:     d.ClosedTickets,
			Total:      d.TotalTickets,
			Users:      d.ActiveUsers,
		},
		RecentActivities: recent,
		GeneratedAt:      d.GeneratedAt.UTC(),
	}
}
