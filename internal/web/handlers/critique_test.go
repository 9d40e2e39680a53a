package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stylemirror/stylemirror/internal/ai"
)

func storedCritique() *ai.Critique {
	return &ai.Critique{
		Score:       72,
		Title:       "Promising",
		Critique:    "The silhouette works but the colors clash.",
		Suggestions: []string{"swap the shoes", "add a jacket", "mute the shirt"},
	}
}

func TestCritique_RunStoresResult(t *testing.T) {
	h := newTestHarness(t, false)
	h.stylist.critique = storedCritique()
	handler := NewCritiqueHandler(h.registry, h.orchestrator)
	h.setSessionSource(t)

	rec := httptest.NewRecorder()
	handler.Run(rec, h.requestWithSession(http.MethodPost, "/api/v1/sessions/current/critique", nil))

	assertStatusCode(t, rec, http.StatusOK)
	var resp struct {
		Applied  bool         `json:"applied"`
		Critique *ai.Critique `json:"critique"`
	}
	parseJSONResponse(t, rec, &resp)
	if !resp.Applied || resp.Critique == nil || resp.Critique.Score != 72 {
		t.Errorf("unexpected critique response: %+v", resp)
	}
	if h.entry.Stylist.Critique() == nil {
		t.Error("critique must be stored on the session")
	}
}

func TestCritique_RunOnEmptySessionIsNoop(t *testing.T) {
	h := newTestHarness(t, false)
	h.stylist.critique = storedCritique()
	handler := NewCritiqueHandler(h.registry, h.orchestrator)

	rec := httptest.NewRecorder()
	handler.Run(rec, h.requestWithSession(http.MethodPost, "/api/v1/sessions/current/critique", nil))

	assertStatusCode(t, rec, http.StatusOK)
	var resp map[string]any
	parseJSONResponse(t, rec, &resp)
	if resp["accepted"] != false {
		t.Errorf("expected silent no-op, got %v", resp)
	}
	if h.stylist.requests != 0 {
		t.Error("no request must be sent without a source image")
	}
}

func TestCritique_GetWithoutCritique(t *testing.T) {
	h := newTestHarness(t, false)
	handler := NewCritiqueHandler(h.registry, h.orchestrator)

	rec := httptest.NewRecorder()
	handler.Get(rec, h.requestWithSession(http.MethodGet, "/api/v1/sessions/current/critique", nil))

	assertStatusCode(t, rec, http.StatusNotFound)
}

func TestCritique_DismissSuggestionPreservesOrder(t *testing.T) {
	h := newTestHarness(t, false)
	handler := NewCritiqueHandler(h.registry, h.orchestrator)
	h.entry.Stylist.SetCritique(storedCritique())

	req := h.requestWithSession(http.MethodDelete, "/api/v1/sessions/current/suggestions/1", nil)
	req = requestWithChiParams(req, map[string]string{"index": "1"})

	rec := httptest.NewRecorder()
	handler.DismissSuggestion(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.Suggestions) != 2 || resp.Suggestions[0] != "swap the shoes" || resp.Suggestions[1] != "mute the shirt" {
		t.Errorf("unexpected suggestions after dismiss: %v", resp.Suggestions)
	}
}

func TestCritique_DismissSuggestionOutOfRange(t *testing.T) {
	h := newTestHarness(t, false)
	handler := NewCritiqueHandler(h.registry, h.orchestrator)
	h.entry.Stylist.SetCritique(storedCritique())

	req := h.requestWithSession(http.MethodDelete, "/api/v1/sessions/current/suggestions/9", nil)
	req = requestWithChiParams(req, map[string]string{"index": "9"})

	rec := httptest.NewRecorder()
	handler.DismissSuggestion(rec, req)
	assertStatusCode(t, rec, http.StatusNotFound)

	req = h.requestWithSession(http.MethodDelete, "/api/v1/sessions/current/suggestions/x", nil)
	req = requestWithChiParams(req, map[string]string{"index": "x"})

	rec = httptest.NewRecorder()
	handler.DismissSuggestion(rec, req)
	assertStatusCode(t, rec, http.StatusBadRequest)
}
