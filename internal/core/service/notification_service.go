package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/akilawedasinghe/symetrix/internal/api/metrics"
	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ledger"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

// NotificationService scopes one notification ledger to every authenticated
// session and fans activity notifications out to them.
type NotificationService struct {
	registry *ledger.Registry
	log      zerolog.Logger
}

// NewNotificationService returns a service whose ledgers start with the demo
// seed when seedDemo is set. A ledger is dropped ttl after its session opened
// it, matching the lifetime of the session token; ttl <= 0 never expires.
func NewNotificationService(seedDemo bool, ttl time.Duration, log zerolog.Logger) *NotificationService {
	s := &NotificationService{log: log}
	s.registry = ledger.NewRegistry(func(sessionID string) *ledger.Ledger {
		opts := []ledger.Option{ledger.WithAlert(s.alert(sessionID))}
		if seedDemo {
			opts = append(opts, ledger.WithSeed(ledger.DemoSeed(time.Now().UTC())))
		}
		return ledger.New(opts...)
	}, ttl)
	return s
}

// Run sweeps expired ledgers every interval until ctx is done.
func (s *NotificationService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep closes the ledgers of expired sessions.
func (s *NotificationService) Sweep() int {
	n := s.registry.Sweep()
	if n > 0 {
		s.log.Debug().Int("closed", n).Msg("expired notification ledgers swept")
	}
	metrics.SessionsOpen.Set(float64(s.registry.Len()))
	return n
}

// alert is the transient notice raised for every added notification.
func (s *NotificationService) alert(sessionID string) ledger.AlertFunc {
	return func(n domain.Notification) {
		metrics.NotificationsAddedTotal.WithLabelValues(string(n.Category), string(n.Type)).Inc()
		s.log.Info().
			Str("session_id", sessionID).
			Str("notification_id", n.ID).
			Str("category", string(n.Category)).
			Str("title", n.Title).
			Msg(n.Message)
	}
}

// SessionStarted opens the ledger of sess.
func (s *NotificationService) SessionStarted(sess *session.Session, user domain.User) {
	s.registry.Open(sess.ID(), user.ID, user.Role)
	metrics.SessionsOpen.Set(float64(s.registry.Len()))
}

// SessionEnded tears the ledger of sess down.
func (s *NotificationService) SessionEnded(sess *session.Session) {
	s.registry.Close(sess.ID())
	metrics.SessionsOpen.Set(float64(s.registry.Len()))
}

// IdentityRemoved tears down every ledger owned by userID.
func (s *NotificationService) IdentityRemoved(userID string) {
	if n := s.registry.CloseUser(userID); n > 0 {
		s.log.Info().Str("user_id", userID).Int("closed", n).Msg("ledgers of removed identity closed")
	}
	metrics.SessionsOpen.Set(float64(s.registry.Len()))
}

// Ledger returns the ledger of an authenticated session, opening it if the
// session was restored from a snapshot.
func (s *NotificationService) Ledger(sess *session.Session) (*ledger.Ledger, error) {
	user := sess.User()
	if user == nil || !sess.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if l, ok := s.registry.Get(sess.ID()); ok {
		return l, nil
	}
	l := s.registry.Open(sess.ID(), user.ID, user.Role)
	metrics.SessionsOpen.Set(float64(s.registry.Len()))
	return l, nil
}

// NotifyUser adds n to every ledger owned by userID.
func (s *NotificationService) NotifyUser(userID string, n domain.NewNotification) int {
	ledgers := s.registry.ForUser(userID)
	for _, l := range ledgers {
		l.Add(n)
	}
	return len(ledgers)
}

// NotifyRoles adds n to every ledger whose owner has one of roles, except
// ledgers owned by exceptUserID.
func (s *NotificationService) NotifyRoles(n domain.NewNotification, exceptUserID string, roles ...domain.Role) int {
	ledgers := s.registry.ForRoles(exceptUserID, roles...)
	for _, l := range ledgers {
		l.Add(n)
	}
	return len(ledgers)
}
