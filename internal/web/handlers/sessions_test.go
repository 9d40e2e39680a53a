package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stylemirror/stylemirror/internal/web/middleware"
)

func TestSessions_CreateIssuesCookieAndStylistSession(t *testing.T) {
	sm := middleware.NewSessionManager("test-secret", nil)
	registry := NewSessionRegistry()
	handler := NewSessionsHandler(sm, registry)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assertStatusCode(t, rec, http.StatusCreated)
	if len(rec.Result().Cookies()) != 1 {
		t.Error("expected a session cookie")
	}

	var resp struct {
		Stylist map[string]any `json:"stylist"`
	}
	parseJSONResponse(t, rec, &resp)
	if resp.Stylist["state"] != "empty" {
		t.Errorf("new session should start empty, got %v", resp.Stylist["state"])
	}
	if registry.Count() != 1 {
		t.Errorf("expected 1 registered session, got %d", registry.Count())
	}
}

func TestSessions_StatusRequiresStylistSession(t *testing.T) {
	h := newTestHarness(t, false)
	sm := middleware.NewSessionManager("test-secret", nil)
	handler := NewSessionsHandler(sm, NewSessionRegistry())

	rec := httptest.NewRecorder()
	handler.Status(rec, h.requestWithSession(http.MethodGet, "/api/v1/sessions/current", nil))

	assertStatusCode(t, rec, http.StatusNotFound)
}

func TestSessions_SourceUploadRoundTrip(t *testing.T) {
	h := newTestHarness(t, false)
	sm := middleware.NewSessionManager("test-secret", nil)
	handler := NewSessionsHandler(sm, h.registry)

	body, contentType := multipartBody(t, "image", encodeTestJPEG(t))
	req := h.requestWithSession(http.MethodPost, "/api/v1/sessions/current/source", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.SetSource(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	var resp map[string]any
	parseJSONResponse(t, rec, &resp)
	if resp["state"] != "captured" {
		t.Errorf("expected captured state, got %v", resp["state"])
	}

	// The stored image is re-encoded to JPEG during preparation.
	rec = httptest.NewRecorder()
	handler.CurrentImage(rec, h.requestWithSession(http.MethodGet, "/api/v1/sessions/current/image", nil))
	assertStatusCode(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected image bytes")
	}
}

func TestSessions_SourceUploadRejectsGarbage(t *testing.T) {
	h := newTestHarness(t, false)
	sm := middleware.NewSessionManager("test-secret", nil)
	handler := NewSessionsHandler(sm, h.registry)

	body, contentType := multipartBody(t, "image", []byte("not an image"))
	req := h.requestWithSession(http.MethodPost, "/api/v1/sessions/current/source", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.SetSource(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
	assertJSONError(t, rec, "unsupported or corrupt image")
}

func TestSessions_CurrentImageEmptySession(t *testing.T) {
	h := newTestHarness(t, false)
	sm := middleware.NewSessionManager("test-secret", nil)
	handler := NewSessionsHandler(sm, h.registry)

	rec := httptest.NewRecorder()
	handler.CurrentImage(rec, h.requestWithSession(http.MethodGet, "/api/v1/sessions/current/image", nil))

	assertStatusCode(t, rec, http.StatusNotFound)
}

func TestSessions_ResetAndDelete(t *testing.T) {
	h := newTestHarness(t, false)
	sm := middleware.NewSessionManager("test-secret", nil)
	handler := NewSessionsHandler(sm, h.registry)
	h.setSessionSource(t)

	rec := httptest.NewRecorder()
	handler.Reset(rec, h.requestWithSession(http.MethodPost, "/api/v1/sessions/current/reset", nil))
	assertStatusCode(t, rec, http.StatusOK)

	rec = httptest.NewRecorder()
	handler.Delete(rec, h.requestWithSession(http.MethodDelete, "/api/v1/sessions/current", nil))
	assertStatusCode(t, rec, http.StatusOK)
	if h.registry.Count() != 0 {
		t.Errorf("expected empty registry after delete, got %d", h.registry.Count())
	}
}
