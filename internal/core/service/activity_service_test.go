package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubDedup struct {
	dupResult bool
	dupErr    error
	markErr   error
	marked    []string
}

func (d *stubDedup) IsDuplicate(_ context.Context, activityID string) (bool, error) {
	return d.dupResult, d.dupErr
}

func (d *stubDedup) Mark(_ context.Context, activityID string) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, activityID)
	return nil
}

type delivery struct {
	userID string
	roles  []domain.Role
	except string
	n      domain.NewNotification
}

type stubNotifier struct {
	deliveries []delivery
}

func (n *stubNotifier) NotifyUser(userID string, nn domain.NewNotification) int {
	n.deliveries = append(n.deliveries, delivery{userID: userID, n: nn})
	return 1
}

func (n *stubNotifier) NotifyRoles(nn domain.NewNotification, except string, roles ...domain.Role) int {
	n.deliveries = append(n.deliveries, delivery{roles: roles, except: except, n: nn})
	return len(roles)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newActivitySvc(tickets *stubTicketRepo, acts *stubActivityRepo, dedup *stubDedup, notifier *stubNotifier) ports.ActivityService {
	return NewActivityService(acts, tickets, dedup, notifier, zerolog.Nop())
}

func seededTickets(id, clientID, supportID string) *stubTicketRepo {
	repo := newStubTicketRepo()
	now := time.Now().UTC()
	repo.byID[id] = &domain.Ticket{
		ID:            id,
		Title:         "Posting error",
		ClientID:      clientID,
		SupportID:     supportID,
		Status:        domain.StatusOpen,
		CreatedAt:     now,
		StatusHistory: []domain.StatusHistoryEntry{{Status: domain.StatusOpen, Timestamp: now}},
	}
	return repo
}

func activity(kind domain.ActivityType, ticketID, userID string, meta map[string]string) domain.Activity {
	return domain.Activity{
		ID:        "act-" + string(kind),
		Type:      kind,
		TicketID:  ticketID,
		UserID:    userID,
		User:      "Someone",
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestActivityService_Process_HappyPath(t *testing.T) {
	tickets := seededTickets("TCK-AABBCCDD", "3", "")
	acts := &stubActivityRepo{}
	dedup := &stubDedup{}
	notifier := &stubNotifier{}

	svc := newActivitySvc(tickets, acts, dedup, notifier)
	if err := svc.Process(context.Background(), activity(domain.ActivityTicketCreated, "TCK-AABBCCDD", "3", nil)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(acts.inserted) != 1 {
		t.Errorf("expected activity persisted")
	}
	if len(dedup.marked) != 1 {
		t.Errorf("expected dedup key marked")
	}
	if len(notifier.deliveries) != 1 {
		t.Fatalf("expected one fan-out, got %d", len(notifier.deliveries))
	}
	d := notifier.deliveries[0]
	if d.except != "3" || len(d.roles) != 2 || d.n.Category != domain.CategoryTicket || d.n.LinkTo != "/tickets/TCK-AABBCCDD" {
		t.Errorf("unexpected delivery: %+v", d)
	}
}

func TestActivityService_Process_DuplicateSkipped(t *testing.T) {
	tickets := seededTickets("TCK-AABBCCDD", "3", "")
	acts := &stubActivityRepo{}
	notifier := &stubNotifier{}

	svc := newActivitySvc(tickets, acts, &stubDedup{dupResult: true}, notifier)
	if err := svc.Process(context.Background(), activity(domain.ActivityTicketCreated, "TCK-AABBCCDD", "3", nil)); err != nil {
		t.Fatalf("expected no error for duplicate, got: %v", err)
	}
	if len(acts.inserted) != 0 || len(notifier.deliveries) != 0 {
		t.Errorf("duplicate must have no side effects")
	}
}

func TestActivityService_Process_DedupErrorStillProcesses(t *testing.T) {
	tickets := seededTickets("TCK-AABBCCDD", "3", "")
	acts := &stubActivityRepo{}

	svc := newActivitySvc(tickets, acts, &stubDedup{dupErr: errors.New("redis down")}, &stubNotifier{})
	if err := svc.Process(context.Background(), activity(domain.ActivityTicketCreated, "TCK-AABBCCDD", "3", nil)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(acts.inserted) != 1 {
		t.Errorf("expected activity persisted despite dedup failure")
	}
}

func TestActivityService_Process_TicketNotFound(t *testing.T) {
	svc := newActivitySvc(newStubTicketRepo(), &stubActivityRepo{}, &stubDedup{}, &stubNotifier{})

	err := svc.Process(context.Background(), activity(domain.ActivityStatusChanged, "TCK-NOTFOUND", "2", nil))
	if !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("expected ErrTicketNotFound, got: %v", err)
	}
}

func TestActivityService_Process_InsertError(t *testing.T) {
	tickets := seededTickets("TCK-AABBCCDD", "3", "")
	notifier := &stubNotifier{}

	svc := newActivitySvc(tickets, &stubActivityRepo{insertErr: errors.New("write failed")}, &stubDedup{}, notifier)
	if err := svc.Process(context.Background(), activity(domain.ActivityTicketCreated, "TCK-AABBCCDD", "3", nil)); err == nil {
		t.Fatal("expected error")
	}
	if len(notifier.deliveries) != 0 {
		t.Error("nothing may be delivered when persisting fails")
	}
}

func TestActivityService_FanOut(t *testing.T) {
	tests := []struct {
		name      string
		a         domain.Activity
		supportID string
		wantUsers []string
		wantRoles []domain.Role
	}{
		{
			name:      "registration goes to admins",
			a:         activity(domain.ActivityUserRegistered, "", "9", map[string]string{"role": "client"}),
			wantRoles: []domain.Role{domain.RoleAdmin},
		},
		{
			name:      "status change reaches client and assignee",
			a:         activity(domain.ActivityStatusChanged, "T1", "1", map[string]string{"status": "in_progress"}),
			supportID: "5",
			wantUsers: []string{"3", "5"},
		},
		{
			name:      "actor is not notified of own change",
			a:         activity(domain.ActivityTicketResolved, "T1", "5", nil),
			supportID: "5",
			wantUsers: []string{"3"},
		},
		{
			name:      "assignment reaches the assignee",
			a:         activity(domain.ActivityTicketAssigned, "T1", "1", nil),
			supportID: "5",
			wantUsers: []string{"5"},
		},
		{
			name:      "client message reaches assignee",
			a:         activity(domain.ActivityMessageSent, "T1", "3", nil),
			supportID: "5",
			wantUsers: []string{"5"},
		},
		{
			name:      "client message on unassigned ticket reaches staff",
			a:         activity(domain.ActivityMessageSent, "T1", "3", nil),
			wantRoles: []domain.Role{domain.RoleSupport, domain.RoleAdmin},
		},
		{
			name:      "staff message reaches client",
			a:         activity(domain.ActivityMessageSent, "T1", "5", nil),
			supportID: "5",
			wantUsers: []string{"3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &stubNotifier{}
			svc := newActivitySvc(seededTickets("T1", "3", tt.supportID), &stubActivityRepo{}, &stubDedup{}, notifier)

			if err := svc.Process(context.Background(), tt.a); err != nil {
				t.Fatalf("process: %v", err)
			}

			var users []string
			var roles []domain.Role
			for _, d := range notifier.deliveries {
				if d.userID != "" {
					users = append(users, d.userID)
				}
				roles = append(roles, d.roles...)
			}
			if len(users) != len(tt.wantUsers) {
				t.Fatalf("users: want %v, got %v", tt.wantUsers, users)
			}
			for i := range users {
				if users[i] != tt.wantUsers[i] {
					t.Fatalf("users: want %v, got %v", tt.wantUsers, users)
				}
			}
			if len(roles) != len(tt.wantRoles) {
				t.Fatalf("roles: want %v, got %v", tt.wantRoles, roles)
			}
			for i := range roles {
				if roles[i] != tt.wantRoles[i] {
					t.Fatalf("roles: want %v, got %v", tt.wantRoles, roles)
				}
			}
		})
	}
}
