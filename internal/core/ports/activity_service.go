package ports

import (
	"context"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// ActivityPublisher hands activities to the asynchronous pipeline.
type ActivityPublisher interface {
	Enqueue(a domain.Activity)
}

// ActivityService processes a single activity: persists it and notifies
// the sessions it concerns.
type ActivityService interface {
	Process(ctx context.Context, a domain.Activity) error
}

// Notifier delivers a notification to the ledgers of open sessions and
// reports how many ledgers received it.
type Notifier interface {
	NotifyUser(userID string, n domain.NewNotification) int
	NotifyRoles(n domain.NewNotification, exceptUserID string, roles ...domain.Role) int
}
