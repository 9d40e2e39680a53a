package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stylemirror/stylemirror/internal/ai"
)

func voiceSetup(t *testing.T) (*testHarness, *VoiceHandler) {
	t.Helper()
	h := newTestHarness(t, false)
	generate := NewGenerateHandler(testConfig(), h.registry, h.orchestrator)
	critique := NewCritiqueHandler(h.registry, h.orchestrator)
	return h, NewVoiceHandler(testConfig(), h.registry, generate, critique)
}

func TestVoice_BackgroundCommand(t *testing.T) {
	h, handler := voiceSetup(t)
	h.setSessionSource(t)

	rec := httptest.NewRecorder()
	handler.Interpret(rec, h.jsonRequest(t, http.MethodPost, "/api/v1/sessions/current/voice", map[string]string{
		"transcript": "change the background to a snowy mountain",
	}))

	assertStatusCode(t, rec, http.StatusOK)
	var resp map[string]any
	parseJSONResponse(t, rec, &resp)
	if resp["kind"] != "background" || resp["applied"] != true {
		t.Errorf("unexpected voice response: %v", resp)
	}
	if h.stylist.requests != 1 {
		t.Errorf("expected 1 generation request, got %d", h.stylist.requests)
	}
}

func TestVoice_UnrecognizedIsSilent(t *testing.T) {
	h, handler := voiceSetup(t)
	h.setSessionSource(t)

	rec := httptest.NewRecorder()
	handler.Interpret(rec, h.jsonRequest(t, http.MethodPost, "/api/v1/sessions/current/voice", map[string]string{
		"transcript": "what time is it",
	}))

	assertStatusCode(t, rec, http.StatusOK)
	var resp map[string]any
	parseJSONResponse(t, rec, &resp)
	if resp["command"] != "none" {
		t.Errorf("expected none, got %v", resp["command"])
	}
	if h.stylist.requests != 0 {
		t.Error("unrecognized speech must not trigger generation")
	}
}

func TestVoice_ResetCommand(t *testing.T) {
	h, handler := voiceSetup(t)
	h.setSessionSource(t)

	// Build a generated chain first.
	generate := NewGenerateHandler(testConfig(), h.registry, h.orchestrator)
	rec := httptest.NewRecorder()
	generate.Generate(rec, h.jsonRequest(t, http.MethodPost, "/api/v1/sessions/current/generate", map[string]any{"kind": "hair"}))
	assertStatusCode(t, rec, http.StatusOK)

	rec = httptest.NewRecorder()
	handler.Interpret(rec, h.jsonRequest(t, http.MethodPost, "/api/v1/sessions/current/voice", map[string]string{
		"transcript": "reset please",
	}))

	assertStatusCode(t, rec, http.StatusOK)
	var resp map[string]any
	parseJSONResponse(t, rec, &resp)
	if resp["command"] != "reset" || resp["state"] != "captured" {
		t.Errorf("unexpected reset response: %v", resp)
	}
}

func TestVoice_CritiqueOnlyWithImage(t *testing.T) {
	h, handler := voiceSetup(t)
	h.stylist.critique = &ai.Critique{Score: 50, Title: "OK", Critique: "fine", Suggestions: []string{"iron the shirt"}}

	// Without an image the review vocabulary is inactive.
	rec := httptest.NewRecorder()
	handler.Interpret(rec, h.jsonRequest(t, http.MethodPost, "/api/v1/sessions/current/voice", map[string]string{
		"transcript": "rate my look",
	}))
	var resp map[string]any
	parseJSONResponse(t, rec, &resp)
	if resp["command"] != "none" {
		t.Errorf("expected none without an image, got %v", resp["command"])
	}

	// With an image the same transcript runs a critique.
	h.setSessionSource(t)
	rec = httptest.NewRecorder()
	handler.Interpret(rec, h.jsonRequest(t, http.MethodPost, "/api/v1/sessions/current/voice", map[string]string{
		"transcript": "rate my look",
	}))
	assertStatusCode(t, rec, http.StatusOK)
	if h.entry.Stylist.Critique() == nil {
		t.Error("expected critique stored on session")
	}
}

func TestVoice_RecolorMatchesPaletteKeyword(t *testing.T) {
	h, handler := voiceSetup(t)
	h.setSessionSource(t)

	rec := httptest.NewRecorder()
	handler.Interpret(rec, h.jsonRequest(t, http.MethodPost, "/api/v1/sessions/current/voice", map[string]string{
		"transcript": "make the colors more earth toned",
	}))

	assertStatusCode(t, rec, http.StatusOK)
	var resp map[string]any
	parseJSONResponse(t, rec, &resp)
	if resp["kind"] != "recolor" {
		t.Errorf("expected recolor, got %v", resp)
	}
}
