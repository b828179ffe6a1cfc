package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
	"github.com/akilawedasinghe/symetrix/internal/infrastructure/db/memory"
)

type stubAuthService struct {
	loginFn    func(ctx context.Context, sess *session.Session, email, password string) (*domain.User, error)
	registerFn func(ctx context.Context, sess *session.Session, in ports.RegisterInput) (*domain.User, error)
	listFn     func(ctx context.Context) ([]domain.User, error)
	createFn   func(ctx context.Context, sess *session.Session, in ports.CreateUserInput, password string) (*domain.User, error)
	updateFn   func(ctx context.Context, sess *session.Session, id string, patch domain.UserPatch) (*domain.User, error)
	deleteFn   func(ctx context.Context, sess *session.Session, id string) error
	resetFn    func(ctx context.Context, sess *session.Session, id, newPassword string) error

	loggedOut []*session.Session
}

func (s *stubAuthService) Login(ctx context.Context, sess *session.Session, email, password string) (*domain.User, error) {
	return s.loginFn(ctx, sess, email, password)
}

func (s *stubAuthService) Register(ctx context.Context, sess *session.Session, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, sess, in)
}

func (s *stubAuthService) Logout(ctx context.Context, sess *session.Session) {
	s.loggedOut = append(s.loggedOut, sess)
	_ = sess.Logout(ctx)
}

func (s *stubAuthService) Revalidate(ctx context.Context, sess *session.Session) (*domain.User, error) {
	if u := sess.User(); u != nil {
		return u, nil
	}
	return nil, domain.ErrUnauthenticated
}

func (s *stubAuthService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubAuthService) CreateUser(ctx context.Context, sess *session.Session, in ports.CreateUserInput, password string) (*domain.User, error) {
	return s.createFn(ctx, sess, in, password)
}

func (s *stubAuthService) UpdateUser(ctx context.Context, sess *session.Session, id string, patch domain.UserPatch) (*domain.User, error) {
	return s.updateFn(ctx, sess, id, patch)
}

func (s *stubAuthService) DeleteUser(ctx context.Context, sess *session.Session, id string) error {
	return s.deleteFn(ctx, sess, id)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, sess *session.Session, id, newPassword string) error {
	return s.resetFn(ctx, sess, id, newPassword)
}

func (s *stubAuthService) IssueToken(sess *session.Session) (string, time.Time, error) {
	if !sess.IsAuthenticated() {
		return "", time.Time{}, domain.ErrUnauthenticated
	}
	return "token-" + sess.User().ID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

// authenticateAs mimics a successful service call that logs sess in.
func authenticateAs(u domain.User) func(ctx context.Context, sess *session.Session) (*domain.User, error) {
	return func(ctx context.Context, sess *session.Session) (*domain.User, error) {
		return sess.Authenticate(ctx, func() (*domain.User, error) { return &u, nil })
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	store := memory.NewSnapshotStore(0)
	var gotSession *session.Session
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, sess *session.Session, email, password string) (*domain.User, error) {
			if email != "john@example.com" || password != "password" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			gotSession = sess
			return authenticateAs(clientUser)(ctx, sess)
		},
	}
	h := NewAuthHandler(stub, store, false)

	e := newEcho()
	c, rec := newRequest(e, http.MethodPost, "/auth/login", `{"email":"john@example.com","password":"password"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token-3" || resp["expires_at"] == nil {
		t.Fatalf("unexpected token payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "3" || user["role"] != "client" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, hasHash := user["PasswordHash"]; hasHash {
		t.Fatal("password hash must not be serialised")
	}

	if gotSession == nil || gotSession.ID() == "" {
		t.Fatal("login must run on a fresh identified session")
	}
	if _, err := store.Load(context.Background(), gotSession.Key()); err != nil {
		t.Fatalf("session snapshot should be persisted: %v", err)
	}
}

func TestAuthHandler_Login_PassesServiceErrors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrRateLimited} {
		stub := &stubAuthService{
			loginFn: func(context.Context, *session.Session, string, string) (*domain.User, error) {
				return nil, want
			},
		}
		h := NewAuthHandler(stub, memory.NewSnapshotStore(0), false)

		c, _ := newRequest(newEcho(), http.MethodPost, "/auth/login", `{"email":"john@example.com","password":"bad"}`)
		if err := h.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, *session.Session, string, string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, memory.NewSnapshotStore(0), false)

	c, _ := newRequest(newEcho(), http.MethodPost, "/auth/login", "{")
	if code := httpCode(t, h.Login(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Register_ClientGetsToken(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, sess *session.Session, in ports.RegisterInput) (*domain.User, error) {
			if in.Name != "Jane" || in.Email != "jane@example.com" || in.ERPSystem != domain.ERPAcumatica || in.Role != "" {
				t.Fatalf("unexpected input: %+v", in)
			}
			u := domain.User{ID: "9", Name: in.Name, Email: in.Email, Role: domain.RoleClient, ERPSystem: in.ERPSystem}
			return authenticateAs(u)(ctx, sess)
		},
	}
	h := NewAuthHandler(stub, memory.NewSnapshotStore(0), false)

	c, rec := newRequest(newEcho(), http.MethodPost, "/auth/register",
		`{"name":"Jane","email":"jane@example.com","password":"secret","erp_system":"acumatica"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["token"] != "token-9" {
		t.Fatalf("client registration should return a token: %+v", resp)
	}
}

func TestAuthHandler_Register_StaffRefusedByDefault(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, *session.Session, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, memory.NewSnapshotStore(0), false)

	c, _ := newRequest(newEcho(), http.MethodPost, "/auth/register",
		`{"name":"Eve","email":"eve@example.com","password":"secret","role":"admin"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthHandler_Register_StaffAllowed(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _ *session.Session, in ports.RegisterInput) (*domain.User, error) {
			return &domain.User{ID: "10", Name: in.Name, Email: in.Email, Role: in.Role}, nil
		},
	}
	h := NewAuthHandler(stub, memory.NewSnapshotStore(0), true)

	c, rec := newRequest(newEcho(), http.MethodPost, "/auth/register",
		`{"name":"Sam","email":"sam@example.com","password":"secret","role":"support"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusCreated || resp["token"] != nil {
		t.Fatalf("staff registration must not open a session: %d %+v", rec.Code, resp)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, *session.Session, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, memory.NewSnapshotStore(0), true)

	bodies := []string{
		`{"email":"a@example.com","password":"x"}`,
		`{"name":"A","email":"not-an-email","password":"x"}`,
		`{"name":"A","email":"a@example.com","password":"x","role":"root"}`,
		`not-json`,
	}
	for _, body := range bodies {
		c, _ := newRequest(newEcho(), http.MethodPost, "/auth/register", body)
		if code := httpCode(t, h.Register(c)); code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, code)
		}
	}
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	stub := &stubAuthService{}
	h := NewAuthHandler(stub, memory.NewSnapshotStore(0), false)
	sess := loggedIn(t, clientUser)

	e := newEcho()
	c, rec := newRequest(e, http.MethodGet, "/auth/me", "")
	if err := h.Me(withSession(c, sess)); err != nil {
		t.Fatalf("me: %v", err)
	}
	var me domain.User
	_ = json.Unmarshal(rec.Body.Bytes(), &me)
	if me.ID != "3" {
		t.Fatalf("unexpected identity: %+v", me)
	}

	c, rec = newRequest(e, http.MethodPost, "/auth/logout", "")
	if err := h.Logout(withSession(c, sess)); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusNoContent || len(stub.loggedOut) != 1 {
		t.Fatalf("expected 204 and one logout, got %d/%d", rec.Code, len(stub.loggedOut))
	}

	c, _ = newRequest(e, http.MethodGet, "/auth/me", "")
	if code := httpCode(t, h.Me(withSession(c, sess))); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", code)
	}
}
