package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ledger"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

type stubLedgers struct {
	l   *ledger.Ledger
	err error
}

func (s *stubLedgers) Ledger(*session.Session) (*ledger.Ledger, error) {
	return s.l, s.err
}

func TestNotificationHandler_Flow(t *testing.T) {
	provider := &stubLedgers{l: ledger.New()}
	h := NewNotificationHandler(provider)
	e := newEcho()
	sess := loggedIn(t, clientUser)

	c, rec := newRequest(e, http.MethodPost, "/v1/notifications",
		`{"title":"Ticket updated","message":"TCK-1 is in progress","category":"ticket"}`)
	if err := h.Add(withSession(c, sess)); err != nil {
		t.Fatalf("add: %v", err)
	}
	var added domain.Notification
	_ = json.Unmarshal(rec.Body.Bytes(), &added)
	if rec.Code != http.StatusCreated || added.ID == "" || added.IsRead || added.Type != domain.NotificationInfo {
		t.Fatalf("unexpected notification: %d %+v", rec.Code, added)
	}

	c, rec = newRequest(e, http.MethodGet, "/v1/notifications/unread-count", "")
	if err := h.UnreadCount(withSession(c, sess)); err != nil {
		t.Fatalf("unread count: %v", err)
	}
	var count unreadCountResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &count)
	if count.UnreadCount != 1 {
		t.Fatalf("expected 1 unread, got %d", count.UnreadCount)
	}

	c, _ = newRequest(e, http.MethodPost, "/v1/notifications/"+added.ID+"/read", "")
	c.SetParamNames("id")
	c.SetParamValues(added.ID)
	if err := h.MarkRead(withSession(c, sess)); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if provider.l.UnreadCount() != 0 {
		t.Fatal("notification should be read")
	}

	c, rec = newRequest(e, http.MethodGet, "/v1/notifications", "")
	if err := h.List(withSession(c, sess)); err != nil {
		t.Fatalf("list: %v", err)
	}
	var list listNotificationsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list.Data) != 1 || !list.Data[0].IsRead || list.UnreadCount != 0 {
		t.Fatalf("unexpected list: %+v", list)
	}

	c, _ = newRequest(e, http.MethodDelete, "/v1/notifications/"+added.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(added.ID)
	if err := h.Clear(withSession(c, sess)); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if provider.l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d", provider.l.Len())
	}
}

func TestNotificationHandler_BulkOperations(t *testing.T) {
	provider := &stubLedgers{l: ledger.New()}
	provider.l.Add(domain.NewNotification{Title: "a", Message: "a"})
	provider.l.Add(domain.NewNotification{Title: "b", Message: "b"})
	h := NewNotificationHandler(provider)
	e := newEcho()
	sess := loggedIn(t, supportUser)

	c, rec := newRequest(e, http.MethodPost, "/v1/notifications/read-all", "")
	if err := h.MarkAllRead(withSession(c, sess)); err != nil || rec.Code != http.StatusNoContent {
		t.Fatalf("read all: %v %d", err, rec.Code)
	}
	if provider.l.UnreadCount() != 0 {
		t.Fatal("expected all read")
	}

	c, rec = newRequest(e, http.MethodDelete, "/v1/notifications", "")
	if err := h.ClearAll(withSession(c, sess)); err != nil || rec.Code != http.StatusNoContent {
		t.Fatalf("clear all: %v %d", err, rec.Code)
	}
	if provider.l.Len() != 0 {
		t.Fatal("expected empty ledger")
	}
}

func TestNotificationHandler_Errors(t *testing.T) {
	h := NewNotificationHandler(&stubLedgers{err: domain.ErrUnauthenticated})
	e := newEcho()

	c, _ := newRequest(e, http.MethodGet, "/v1/notifications", "")
	if err := h.List(withSession(c, loggedIn(t, clientUser))); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	h = NewNotificationHandler(&stubLedgers{l: ledger.New()})
	c, _ = newRequest(e, http.MethodPost, "/v1/notifications", `{"title":"x","message":"y","type":"fatal"}`)
	if code := httpCode(t, h.Add(withSession(c, loggedIn(t, clientUser)))); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}
