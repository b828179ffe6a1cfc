package ports

import (
	"context"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// ActivityRepository persists the activity feed.
type ActivityRepository interface {
	Insert(ctx context.Context, a *domain.Activity) error
	// Recent returns the newest activities first, at most limit entries.
	// A non-empty clientID keeps only activities on that client's tickets.
	Recent(ctx context.Context, limit int, clientID string) ([]domain.Activity, error)
}
