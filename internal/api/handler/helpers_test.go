package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/akilawedasinghe/symetrix/internal/api/middleware"
	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
	"github.com/akilawedasinghe/symetrix/internal/infrastructure/db/memory"
)

var (
	adminUser   = domain.User{ID: "1", Name: "Admin User", Email: "admin@example.com", Role: domain.RoleAdmin}
	supportUser = domain.User{ID: "2", Name: "Support Agent", Email: "support@example.com", Role: domain.RoleSupport}
	clientUser  = domain.User{ID: "3", Name: "John Doe", Email: "john@example.com", Role: domain.RoleClient, ERPSystem: domain.ERPS4Hana}
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// loggedIn returns an authenticated session for u, as the Session middleware
// would inject it.
func loggedIn(t *testing.T, u domain.User) *session.Session {
	t.Helper()
	sess := session.New("sess-"+u.ID, memory.NewSnapshotStore(0))
	if _, err := sess.Authenticate(context.Background(), func() (*domain.User, error) { return &u, nil }); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	return sess
}

func withSession(c echo.Context, sess *session.Session) echo.Context {
	c.Set(middleware.KeySession, sess)
	return c
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}
