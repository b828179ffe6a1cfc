package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

func TestUserHandler_List(t *testing.T) {
	stub := &stubAuthService{
		listFn: func(context.Context) ([]domain.User, error) {
			return []domain.User{adminUser, supportUser, clientUser}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newRequest(newEcho(), http.MethodGet, "/v1/users", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp listUsersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 3 || resp.Data[0].ID != "1" {
		t.Fatalf("unexpected users: %+v", resp.Data)
	}
}

func TestUserHandler_Create(t *testing.T) {
	admin := loggedIn(t, adminUser)
	stub := &stubAuthService{
		createFn: func(_ context.Context, sess *session.Session, in ports.CreateUserInput, password string) (*domain.User, error) {
			if sess != admin {
				t.Fatal("caller session not forwarded")
			}
			if in.Role != domain.RoleSupport || in.Email != "new@example.com" || password != "s3cret" {
				t.Fatalf("unexpected input: %+v %q", in, password)
			}
			return &domain.User{ID: "u-1", Name: in.Name, Email: in.Email, Role: in.Role}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newRequest(newEcho(), http.MethodPost, "/v1/users",
		`{"name":"New Agent","email":"new@example.com","password":"s3cret","role":"support"}`)
	if err := h.Create(withSession(c, admin)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestUserHandler_Create_PassesForbidden(t *testing.T) {
	stub := &stubAuthService{
		createFn: func(context.Context, *session.Session, ports.CreateUserInput, string) (*domain.User, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := NewUserHandler(stub)

	c, _ := newRequest(newEcho(), http.MethodPost, "/v1/users",
		`{"name":"X","email":"x@example.com","password":"p","role":"client"}`)
	if err := h.Create(withSession(c, loggedIn(t, clientUser))); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserHandler_Update_OnlyProvidedFields(t *testing.T) {
	stub := &stubAuthService{
		updateFn: func(_ context.Context, _ *session.Session, id string, patch domain.UserPatch) (*domain.User, error) {
			if id != "4" {
				t.Fatalf("unexpected id %q", id)
			}
			if patch.Status == nil || *patch.Status != domain.UserInactive {
				t.Fatalf("status not patched: %+v", patch)
			}
			if patch.Name != nil || patch.Email != nil || patch.Role != nil || patch.ERPSystem != nil || patch.Avatar != nil {
				t.Fatalf("absent fields must stay nil: %+v", patch)
			}
			u := domain.User{ID: id, Status: *patch.Status}
			return &u, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newRequest(newEcho(), http.MethodPatch, "/v1/users/4", `{"status":"inactive"}`)
	c.SetParamNames("id")
	c.SetParamValues("4")
	if err := h.Update(withSession(c, loggedIn(t, adminUser))); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newRequest(newEcho(), http.MethodPatch, "/v1/users/4", `{"role":"owner"}`)
	if code := httpCode(t, h.Update(withSession(c, loggedIn(t, adminUser)))); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestUserHandler_DeleteAndResetPassword(t *testing.T) {
	var deleted, reset string
	stub := &stubAuthService{
		deleteFn: func(_ context.Context, _ *session.Session, id string) error {
			deleted = id
			return nil
		},
		resetFn: func(_ context.Context, _ *session.Session, id, pw string) error {
			reset = id + ":" + pw
			return nil
		},
	}
	h := NewUserHandler(stub)
	e := newEcho()
	admin := loggedIn(t, adminUser)

	c, rec := newRequest(e, http.MethodDelete, "/v1/users/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Delete(withSession(c, admin)); err != nil || rec.Code != http.StatusNoContent || deleted != "5" {
		t.Fatalf("delete: err=%v code=%d id=%q", err, rec.Code, deleted)
	}

	c, rec = newRequest(e, http.MethodPost, "/v1/users/5/password", `{"password":"fresh"}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.ResetPassword(withSession(c, admin)); err != nil || rec.Code != http.StatusNoContent || reset != "5:fresh" {
		t.Fatalf("reset: err=%v code=%d got=%q", err, rec.Code, reset)
	}

	c, _ = newRequest(e, http.MethodPost, "/v1/users/5/password", `{}`)
	if code := httpCode(t, h.ResetPassword(withSession(c, admin))); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}
