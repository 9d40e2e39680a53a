package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfig_Get(t *testing.T) {
	handler := NewConfigHandler(testConfig())

	rec := httptest.NewRecorder()
	handler.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	assertStatusCode(t, rec, http.StatusOK)
	var resp struct {
		Palettes   []map[string]string `json:"palettes"`
		Aesthetics []map[string]string `json:"aesthetics"`
		Critic     string              `json:"critic"`
		Operations []string            `json:"operations"`
		Limits     map[string]int      `json:"limits"`
	}
	parseJSONResponse(t, rec, &resp)

	if len(resp.Palettes) != 1 || resp.Palettes[0]["name"] != "earth tones" {
		t.Errorf("unexpected palettes: %+v", resp.Palettes)
	}
	if resp.Palettes[0]["keywords"] != "" {
		t.Error("voice keywords must not leak into the public config")
	}
	if len(resp.Aesthetics) != 1 || resp.Critic != "gemini" {
		t.Errorf("unexpected config payload: %+v", resp)
	}
	if len(resp.Operations) != 5 {
		t.Errorf("expected 5 operations, got %v", resp.Operations)
	}
	if resp.Limits["max_prompt_length"] != 100 {
		t.Errorf("unexpected limits: %v", resp.Limits)
	}
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assertStatusCode(t, rec, http.StatusOK)
	var resp map[string]string
	parseJSONResponse(t, rec, &resp)
	if resp["status"] != "ok" {
		t.Errorf("unexpected health payload: %v", resp)
	}
}
