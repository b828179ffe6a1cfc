package domain

import "time"

// ActivityType names something that happened on a ticket or in the directory.
type ActivityType string

const (
	ActivityTicketCreated  ActivityType = "ticket_created"
	ActivityStatusChanged  ActivityType = "status_changed"
	ActivityMessageSent    ActivityType = "message_sent"
	ActivityUserRegistered ActivityType = "user_registered"
	ActivityTicketAssigned ActivityType = "ticket_assigned"
	ActivityTicketResolved ActivityType = "ticket_resolved"
)

// Activity is an entry of the portal's activity feed.
type Activity struct {
	ID        string            `json:"id" bson:"_id"`
	Type      ActivityType      `json:"type" bson:"type"`
	TicketID  string            `json:"ticket_id,omitempty" bson:"ticket_id,omitempty"`
	// ClientID is the client owning TicketID.
	ClientID  string            `json:"client_id,omitempty" bson:"client_id,omitempty"`
	UserID    string            `json:"user_id,omitempty" bson:"user_id,omitempty"`
	User      string            `json:"user" bson:"user"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
}
