package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

// TicketHandler handles HTTP requests for ticket operations.
type TicketHandler struct {
	service ports.TicketService
}

func NewTicketHandler(service ports.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// Create handles POST /v1/tickets.
//
// @Summary      Open a new ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createTicketRequest  true   "Ticket details"
// @Success      201              {object}  ticketResponse
// @Success      200              {object}  ticketResponse  "Replayed by Idempotency-Key"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Router       /v1/tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	result, err := h.service.CreateTicket(c.Request().Context(), toCreateInput(req, actor, idempotencyKey))
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toTicketResponse(result.Ticket))
}

// List handles GET /v1/tickets.
//
// @Summary      List tickets
// @Description  Clients only see their own tickets.
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "open, in_progress, resolved or closed"
// @Param        priority    query     string  false  "low, medium, high or critical"
// @Param        erp_system  query     string  false  "s4_hana, sap_bydesign or acumatica"
// @Param        department  query     string  false  "Department"
// @Param        support_id  query     string  false  "Assignee id"
// @Param        search      query     string  false  "Partial match on id or title"
// @Param        page        query     int     false  "Page (1-based)"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Success      200         {object}  listTicketsResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Router       /v1/tickets [get]
func (h *TicketHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var q listTicketsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	result, err := h.service.ListTickets(c.Request().Context(), toListInput(q, actor))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(result))
}

// Get handles GET /v1/tickets/:id.
//
// @Summary      Get a ticket by id
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Ticket id (e.g. TCK-1A2B3C4D)"
// @Success      200  {object}  ticketResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/tickets/{id} [get]
func (h *TicketHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	t, err := h.service.GetTicket(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// UpdateStatus handles PATCH /v1/tickets/:id/status.
//
// @Summary      Move a ticket through its lifecycle
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Ticket id"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  ticketResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tickets/{id}/status [patch]
func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	t, err := h.service.UpdateStatus(c.Request().Context(), actor, c.Param("id"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Assign handles POST /v1/tickets/:id/assign.
//
// @Summary      Assign a ticket to a support agent
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Ticket id"
// @Param        body  body      assignTicketRequest  true  "Assignee"
// @Success      200   {object}  ticketResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tickets/{id}/assign [post]
func (h *TicketHandler) Assign(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req assignTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	t, err := h.service.AssignTicket(c.Request().Context(), actor, c.Param("id"), req.SupportID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// ListMessages handles GET /v1/tickets/:id/messages.
//
// @Summary      Get a ticket conversation
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Ticket id"
// @Success      200  {object}  listMessagesResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/tickets/{id}/messages [get]
func (h *TicketHandler) ListMessages(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	msgs, err := h.service.ListMessages(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMessagesResponse(msgs))
}

// AddMessage handles POST /v1/tickets/:id/messages.
//
// @Summary      Post a message on a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Ticket id"
// @Param        body  body      messageRequest  true  "Message"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tickets/{id}/messages [post]
func (h *TicketHandler) AddMessage(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req messageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	m, err := h.service.AddMessage(c.Request().Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toMessageResponse(*m))
}

// Dashboard handles GET /v1/dashboard.
//
// @Summary      Ticket overview for the caller's role
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/dashboard [get]
func (h *TicketHandler) Dashboard(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	d, err := h.service.Dashboard(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardResponse(d))
}
