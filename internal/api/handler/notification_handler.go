package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ledger"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

// LedgerProvider resolves the notification ledger of a session.
type LedgerProvider interface {
	Ledger(sess *session.Session) (*ledger.Ledger, error)
}

// NotificationHandler exposes the caller's notification ledger.
type NotificationHandler struct {
	ledgers LedgerProvider
}

func NewNotificationHandler(ledgers LedgerProvider) *NotificationHandler {
	return &NotificationHandler{ledgers: ledgers}
}

type addNotificationRequest struct {
	Title    string `json:"title"    validate:"required"`
	Message  string `json:"message"  validate:"required"`
	Type     string `json:"type"     validate:"omitempty,oneof=info success warning error"`
	Category string `json:"category" validate:"omitempty,oneof=ticket chat system user"`
	LinkTo   string `json:"link_to"`
}

type listNotificationsResponse struct {
	Data        []domain.Notification `json:"data"`
	UnreadCount int                   `json:"unread_count"`
}

type unreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

func (h *NotificationHandler) ledger(c echo.Context) (*ledger.Ledger, error) {
	sess, err := ctxSession(c)
	if err != nil {
		return nil, err
	}
	return h.ledgers.Ledger(sess)
}

// List handles GET /v1/notifications.
//
// @Summary      List notifications, newest first
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listNotificationsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	l, err := h.ledger(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listNotificationsResponse{Data: l.List(), UnreadCount: l.UnreadCount()})
}

// UnreadCount handles GET /v1/notifications/unread-count.
//
// @Summary      Number of unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  unreadCountResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	l, err := h.ledger(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unreadCountResponse{UnreadCount: l.UnreadCount()})
}

// Add handles POST /v1/notifications.
//
// @Summary      Add a notification to the caller's ledger
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addNotificationRequest  true  "Notification"
// @Success      201   {object}  domain.Notification
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/notifications [post]
func (h *NotificationHandler) Add(c echo.Context) error {
	l, err := h.ledger(c)
	if err != nil {
		return err
	}

	var req addNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n := domain.NewNotification{
		Title:    req.Title,
		Message:  req.Message,
		Type:     domain.NotificationType(req.Type),
		Category: domain.NotificationCategory(req.Category),
		LinkTo:   req.LinkTo,
	}
	return c.JSON(http.StatusCreated, l.Add(n))
}

// MarkRead handles POST /v1/notifications/:id/read. Unknown ids are ignored.
//
// @Summary      Mark one notification as read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	l, err := h.ledger(c)
	if err != nil {
		return err
	}
	l.MarkAsRead(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles POST /v1/notifications/read-all.
//
// @Summary      Mark every notification as read
// @Tags         notifications
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	l, err := h.ledger(c)
	if err != nil {
		return err
	}
	l.MarkAllAsRead()
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /v1/notifications/:id. Unknown ids are ignored.
//
// @Summary      Remove one notification
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/notifications/{id} [delete]
func (h *NotificationHandler) Clear(c echo.Context) error {
	l, err := h.ledger(c)
	if err != nil {
		return err
	}
	l.Clear(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// ClearAll handles DELETE /v1/notifications.
//
// @Summary      Remove every notification
// @Tags         notifications
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/notifications [delete]
func (h *NotificationHandler) ClearAll(c echo.Context) error {
	l, err := h.ledger(c)
	if err != nil {
		return err
	}
	l.ClearAll()
	return c.NoContent(http.StatusNoContent)
}
