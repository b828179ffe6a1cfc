package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/akilawedasinghe/symetrix/internal/api/metrics"
	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis or in-memory).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, activityID string) (bool, error)
	Mark(ctx context.Context, activityID string) error
}

type activityService struct {
	activities ports.ActivityRepository
	tickets    ports.TicketRepository
	dedup      DedupChecker
	notifier   ports.Notifier
	log        zerolog.Logger
}

// NewActivityService returns an ActivityService implementation.
func NewActivityService(
	activities ports.ActivityRepository,
	tickets ports.TicketRepository,
	dedup DedupChecker,
	notifier ports.Notifier,
	log zerolog.Logger,
) ports.ActivityService {
	return &activityService{
		activities: activities,
		tickets:    tickets,
		dedup:      dedup,
		notifier:   notifier,
		log:        log,
	}
}

// Process deduplicates, persists and fans out a single activity.
func (s *activityService) Process(ctx context.Context, a domain.Activity) error {
	start := time.Now()

	// 1. Idempotency check: duplicates are skipped silently.
	isDup, err := s.dedup.IsDuplicate(ctx, a.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("activity_id", a.ID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		metrics.ActivitiesDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Str("activity_id", a.ID).Str("type", string(a.Type)).Msg("duplicate activity skipped")
		return nil
	}
	metrics.ActivitiesDedupTotal.WithLabelValues("miss").Inc()

	// 2. Resolve the ticket the activity refers to (recipients depend on it).
	var ticket *domain.Ticket
	if a.TicketID != "" {
		ticket, err = s.tickets.FindByID(ctx, a.TicketID, "")
		if err != nil {
			s.observeFailure("ticket_lookup_failed", start)
			return fmt.Errorf("process activity: %w", err)
		}
	}

	// 3. Mark as processed before writing (prevents duplicate delivery on retry).
	if markErr := s.dedup.Mark(ctx, a.ID); markErr != nil {
		s.log.Warn().Err(markErr).Str("activity_id", a.ID).Msg("failed to set dedup key")
	}

	// 4. Append to the activity feed.
	if err := s.activities.Insert(ctx, &a); err != nil {
		s.observeFailure("insert_failed", start)
		return fmt.Errorf("process activity: insert: %w", err)
	}

	// 5. Notify the open sessions the activity concerns.
	delivered := s.fanOut(a, ticket)

	metrics.ActivitiesProcessedTotal.WithLabelValues(string(a.Type)).Inc()
	metrics.ActivityProcessingDuration.WithLabelValues(string(a.Type)).Observe(time.Since(start).Seconds())

	s.log.Info().
		Str("activity_id", a.ID).
		Str("type", string(a.Type)).
		Str("ticket_id", a.TicketID).
		Int("delivered", delivered).
		Msg("activity processed")

	return nil
}

func (s *activityService) observeFailure(reason string, start time.Time) {
	metrics.ActivitiesErrorsTotal.WithLabelValues(reason).Inc()
	metrics.ActivityProcessingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
}

// fanOut builds the notification for a and hands it to its recipients.
func (s *activityService) fanOut(a domain.Activity, t *domain.Ticket) int {
	switch a.Type {
	case domain.ActivityUserRegistered:
		return s.notifier.NotifyRoles(domain.NewNotification{
			Title:    "New User Registered",
			Message:  fmt.Sprintf("%s has registered as a new %s", a.User, a.Metadata["role"]),
			Type:     domain.NotificationInfo,
			LinkTo:   "/users",
			Category: domain.CategoryUser,
		}, a.UserID, domain.RoleAdmin)
	}

	if t == nil {
		return 0
	}
	link := "/tickets/" + t.ID

	switch a.Type {
	case domain.ActivityTicketCreated:
		return s.notifier.NotifyRoles(domain.NewNotification{
			Title:    "New Ticket",
			Message:  fmt.Sprintf("%s opened ticket %s: %s", a.User, t.ID, t.Title),
			Type:     domain.NotificationInfo,
			LinkTo:   link,
			Category: domain.CategoryTicket,
		}, a.UserID, domain.RoleSupport, domain.RoleAdmin)

	case domain.ActivityStatusChanged:
		return s.notifyUsers(domain.NewNotification{
			Title:    "Ticket Updated",
			Message:  fmt.Sprintf("Ticket %s is now %s", t.ID, a.Metadata["status"]),
			Type:     domain.NotificationInfo,
			LinkTo:   link,
			Category: domain.CategoryTicket,
		}, a.UserID, t.ClientID, t.SupportID)

	case domain.ActivityTicketResolved:
		return s.notifyUsers(domain.NewNotification{
			Title:    "Ticket Resolved",
			Message:  fmt.Sprintf("Ticket %s has been marked as resolved", t.ID),
			Type:     domain.NotificationSuccess,
			LinkTo:   link,
			Category: domain.CategoryTicket,
		}, a.UserID, t.ClientID, t.SupportID)

	case domain.ActivityTicketAssigned:
		return s.notifyUsers(domain.NewNotification{
			Title:    "New Ticket Assigned",
			Message:  fmt.Sprintf("Ticket %s has been assigned to you", t.ID),
			Type:     domain.NotificationInfo,
			LinkTo:   link,
			Category: domain.CategoryTicket,
		}, a.UserID, t.SupportID)

	case domain.ActivityMessageSent:
		n := domain.NewNotification{
			Title:    "Chat Message",
			Message:  fmt.Sprintf("New message from %s", a.User),
			Type:     domain.NotificationInfo,
			LinkTo:   link,
			Category: domain.CategoryChat,
		}
		if a.UserID != t.ClientID {
			return s.notifyUsers(n, a.UserID, t.ClientID)
		}
		if t.SupportID != "" {
			return s.notifyUsers(n, a.UserID, t.SupportID)
		}
		return s.notifier.NotifyRoles(n, a.UserID, domain.RoleSupport, domain.RoleAdmin)
	}
	return 0
}

// notifyUsers delivers n once to each distinct recipient other than the actor.
func (s *activityService) notifyUsers(n domain.NewNotification, actorID string, userIDs ...string) int {
	seen := make(map[string]struct{}, len(userIDs))
	delivered := 0
	for _, id := range userIDs {
		if id == "" || id == actorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		delivered += s.notifier.NotifyUser(id, n)
	}
	return delivered
}
