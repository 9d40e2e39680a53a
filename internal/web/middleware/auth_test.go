package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewSessionManager(t *testing.T) {
	sm := NewSessionManager("test-secret", nil)
	if sm == nil {
		t.Fatal("NewSessionManager returned nil")
		return
	}
	if sm.sessions == nil {
		t.Error("sessions map is nil")
	}
}

func TestSessionManager_CreateSession(t *testing.T) {
	sm := NewSessionManager("test-secret", nil)

	session, err := sm.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if session.ID == "" {
		t.Error("session ID is empty")
	}
	if session.Token == "" {
		t.Error("session token is empty")
	}
	if session.ExpiresAt.Before(time.Now()) {
		t.Error("session expires in the past")
	}
}

func TestSessionManager_GetSession(t *testing.T) {
	sm := NewSessionManager("test-secret", nil)

	session, _ := sm.CreateSession()

	// Get existing session.
	retrieved := sm.GetSession(session.ID)
	if retrieved == nil {
		t.Fatal("GetSession() returned nil for existing session")
		return
	}
	if retrieved.Token != session.Token {
		t.Errorf("Token = %s, want %s", retrieved.Token, session.Token)
	}

	// Get non-existing session.
	notFound := sm.GetSession("nonexistent-id")
	if notFound != nil {
		t.Error("GetSession() should return nil for non-existing session")
	}
}

func TestSessionManager_DeleteSession(t *testing.T) {
	sm := NewSessionManager("test-secret", nil)

	session, _ := sm.CreateSession()

	// Delete the session.
	sm.DeleteSession(session.ID)

	// Verify it's gone.
	retrieved := sm.GetSession(session.ID)
	if retrieved != nil {
		t.Error("GetSession() should return nil after deletion")
	}
}

func TestSessionManager_CookieRoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret", nil)

	session, _ := sm.CreateSession()

	rec := httptest.NewRecorder()
	sm.SetSessionCookie(rec, session)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	retrieved := sm.GetSessionFromRequest(req)
	if retrieved == nil || retrieved.ID != session.ID {
		t.Error("cookie round trip failed")
	}
}

func TestSessionManager_RejectsTamperedCookie(t *testing.T) {
	sm := NewSessionManager("test-secret", nil)

	session, _ := sm.CreateSession()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  sessionCookieName,
		Value: session.ID + ".bogus-signature",
	})

	if sm.GetSessionFromRequest(req) != nil {
		t.Error("tampered cookie must not resolve to a session")
	}
}

func TestSessionManager_BearerToken(t *testing.T) {
	sm := NewSessionManager("test-secret", nil)

	session, _ := sm.CreateSession()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)

	retrieved := sm.GetSessionFromRequest(req)
	if retrieved == nil || retrieved.ID != session.ID {
		t.Error("bearer token lookup failed")
	}
}

func TestSessionManager_BearerRejectsSessionID(t *testing.T) {
	sm := NewSessionManager("test-secret", nil)

	session, _ := sm.CreateSession()

	// The session ID is not a credential; only the token authenticates.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)

	if sm.GetSessionFromRequest(req) != nil {
		t.Error("session ID must not be accepted as a bearer credential")
	}
}

func TestRequireAuth(t *testing.T) {
	sm := NewSessionManager("test-secret", nil)
	session, _ := sm.CreateSession()

	handler := RequireAuth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSessionFromContext(r.Context()) == nil {
			t.Error("session missing from context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	// Without a session.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", rec.Code)
	}

	// With a valid bearer token.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with session, got %d", rec.Code)
	}
}

func TestGetSessionFromContext_Empty(t *testing.T) {
	if GetSessionFromContext(context.Background()) != nil {
		t.Error("expected nil session from empty context")
	}
}
