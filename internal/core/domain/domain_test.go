package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestTicketStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to TicketStatus
		want     bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusClosed, true},
		{StatusOpen, StatusResolved, false},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusOpen, true},
		{StatusInProgress, StatusClosed, false},
		{StatusResolved, StatusClosed, true},
		{StatusResolved, StatusInProgress, true},
		{StatusClosed, StatusOpen, false},
		{StatusClosed, StatusInProgress, false},
		{StatusOpen, StatusOpen, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: want %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestRole(t *testing.T) {
	if !RoleAdmin.Staff() || !RoleSupport.Staff() || RoleClient.Staff() {
		t.Fatal("unexpected staff classification")
	}
	if Role("root").Valid() || !RoleClient.Valid() {
		t.Fatal("unexpected role validity")
	}
}

func TestUserPatch_Apply(t *testing.T) {
	u := User{ID: "4", Name: "Jane Smith", Email: "jane@example.com", Role: RoleClient, ERPSystem: ERPSAPByDesign}
	name := "Jane Doe"
	status := UserInactive

	got := UserPatch{Name: &name, Status: &status}.Apply(u)

	if got.Name != "Jane Doe" || got.Status != UserInactive {
		t.Fatalf("patched fields not applied: %+v", got)
	}
	if got.ID != "4" || got.Email != "jane@example.com" || got.ERPSystem != ERPSAPByDesign {
		t.Fatalf("unpatched fields changed: %+v", got)
	}
	if u.Name != "Jane Smith" {
		t.Fatal("Apply must not mutate its receiver's input")
	}
}

func TestNotFoundErrors(t *testing.T) {
	for _, err := range []error{ErrUserNotFound, ErrTicketNotFound, fmt.Errorf("wrapped: %w", ErrTicketNotFound)} {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%v should match ErrNotFound", err)
		}
	}
	if errors.Is(ErrUserNotFound, ErrTicketNotFound) {
		t.Error("distinct resources must not match each other")
	}
}
