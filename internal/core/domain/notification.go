package domain

import "time"

// NotificationType is the severity shown with a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// NotificationCategory groups notifications by the area that produced them.
type NotificationCategory string

const (
	CategoryTicket NotificationCategory = "ticket"
	CategoryChat   NotificationCategory = "chat"
	CategorySystem NotificationCategory = "system"
	CategoryUser   NotificationCategory = "user"
)

// Notification is a single read-trackable event in a ledger.
// Only IsRead changes after creation.
type Notification struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Type      NotificationType     `json:"type"`
	IsRead    bool                 `json:"is_read"`
	Timestamp time.Time            `json:"timestamp"`
	LinkTo    string               `json:"link_to,omitempty"`
	Category  NotificationCategory `json:"category"`
}

// NewNotification is the caller-supplied part of a notification; the ledger
// assigns id, read flag and timestamp.
type NewNotification struct {
	Title    string
	Message  string
	Type     NotificationType
	LinkTo   string
	Category NotificationCategory
}
