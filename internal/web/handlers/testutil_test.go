package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stylemirror/stylemirror/internal/ai"
	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/stylist"
	"github.com/stylemirror/stylemirror/internal/web/middleware"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Critic: "gemini",
		Styles: config.StylesConfig{
			Palettes: []config.Palette{
				{Name: "earth tones", Descriptor: "warm browns and greens", Keywords: []string{"earth", "warm"}},
			},
			Aesthetics: []config.Aesthetic{
				{Name: "minimalist", Descriptor: "clean lines, neutral colors"},
			},
		},
	}
}

var errFake = errors.New("service exploded")

// fakeStylist returns canned generation results for handler tests.
type fakeStylist struct {
	mu       sync.Mutex
	requests int
	result   *ai.EditedImage
	err      error
	critique *ai.Critique
}

func (f *fakeStylist) Name() string { return "fake" }

func (f *fakeStylist) EditImage(ctx context.Context, img []byte, mimeType, prompt string) (*ai.EditedImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return f.result, f.err
}

func (f *fakeStylist) CritiqueStyle(ctx context.Context, img []byte, mimeType, prompt string) (*ai.Critique, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.critique == nil {
		return nil, f.err
	}
	return f.critique, nil
}

// testHarness bundles the pieces a handler test needs.
type testHarness struct {
	registry     *SessionRegistry
	orchestrator *stylist.Orchestrator
	stylist      *fakeStylist
	webSession   *middleware.Session
	entry        *SessionEntry
}

// newTestHarness builds a registry with one live-or-upload session.
func newTestHarness(t *testing.T, live bool) *testHarness {
	t.Helper()
	fake := &fakeStylist{
		result: &ai.EditedImage{Data: []byte("generated"), MimeType: "image/png"},
	}

	webSession := &middleware.Session{
		ID:        "web-session-id",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	registry := NewSessionRegistry()
	entry := registry.Create(webSession.ID, live)

	return &testHarness{
		registry:     registry,
		orchestrator: stylist.NewOrchestrator(fake, nil, nil),
		stylist:      fake,
		webSession:   webSession,
		entry:        entry,
	}
}

// requestWithSession creates a request carrying the web session in context
func (h *testHarness) requestWithSession(method, path string, body *bytes.Buffer) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	return req.WithContext(middleware.SetSessionInContext(req.Context(), h.webSession))
}

// jsonRequest creates an authenticated request with a JSON body
func (h *testHarness) jsonRequest(t *testing.T, method, path string, payload any) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	if err := json.NewEncoder(body).Encode(payload); err != nil {
		t.Fatalf("failed to encode request body: %v", err)
	}
	req := h.requestWithSession(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// encodeTestJPEG produces a small decodable JPEG
func encodeTestJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

// multipartBody builds a multipart body with a single file field
func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "test.jpg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// setSessionSource installs a decodable source image on the styling session
func (h *testHarness) setSessionSource(t *testing.T) {
	t.Helper()
	h.entry.Stylist.SetSource(stylist.Image{Data: encodeTestJPEG(t), MimeType: "image/jpeg"})
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
