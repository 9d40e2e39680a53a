package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/stylemirror/stylemirror/internal/ai"
	"github.com/stylemirror/stylemirror/internal/constants"
	"github.com/stylemirror/stylemirror/internal/stylist"
	"github.com/stylemirror/stylemirror/internal/web/middleware"
)

// SessionsHandler manages styling session lifecycle and the source image.
type SessionsHandler struct {
	sessionManager *middleware.SessionManager
	registry       *SessionRegistry
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(sm *middleware.SessionManager, registry *SessionRegistry) *SessionsHandler {
	return &SessionsHandler{
		sessionManager: sm,
		registry:       registry,
	}
}

// stateString maps the image state tag to its wire name.
func stateString(kind stylist.SourceKind) string {
	switch kind {
	case stylist.SourceCaptured:
		return "captured"
	case stylist.SourceGenerated:
		return "generated"
	default:
		return "empty"
	}
}

// sessionStatus builds the status payload for a styling session.
func sessionStatus(entry *SessionEntry) map[string]any {
	s := entry.Stylist
	return map[string]any{
		"session_id":   s.ID,
		"live":         s.Live,
		"state":        stateString(s.Kind()),
		"in_flight":    s.InFlight(),
		"face_present": s.FacePresent(),
		"has_critique": s.Critique() != nil,
	}
}

// Create starts a new web session with an attached styling session.
// The live flag selects the camera workflow with its face-presence gate.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Live bool `json:"live"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}

	webSession, err := h.sessionManager.CreateSession()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.sessionManager.SetSessionCookie(w, webSession)

	entry := h.registry.Create(webSession.ID, req.Live)

	respondJSON(w, http.StatusCreated, map[string]any{
		"session":    webSession.ToJSON(),
		"stylist":    sessionStatus(entry),
		"auth_token": webSession.Token,
	})
}

// Status returns the current styling session state.
func (h *SessionsHandler) Status(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}
	respondJSON(w, http.StatusOK, sessionStatus(entry))
}

// Delete discards the styling session and the web session.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	webSession := middleware.GetSessionFromContext(r.Context())
	if webSession == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.registry.Delete(webSession.ID)
	h.sessionManager.DeleteSession(webSession.ID)
	h.sessionManager.ClearSessionCookie(w)

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Reset returns the session to its original capture, dropping the edit chain.
func (h *SessionsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	entry.Stylist.Reset()
	entry.Events.SendEvent(SessionEvent{Type: EventReset})

	respondJSON(w, http.StatusOK, sessionStatus(entry))
}

// readSourceImage extracts and validates the uploaded image. The upload is
// decoded and normalized before it becomes session state, so undecodable or
// oversized input never reaches the generation service.
func readSourceImage(r *http.Request) (stylist.Image, error) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return stylist.Image{}, errors.New("failed to parse multipart form")
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return stylist.Image{}, errors.New("image file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadSize+1))
	if err != nil {
		return stylist.Image{}, errors.New("failed to read image")
	}
	if len(data) == 0 {
		return stylist.Image{}, errors.New("empty image")
	}
	if len(data) > constants.MaxUploadSize {
		return stylist.Image{}, errors.New("image too large")
	}

	prepared, mimeType, err := ai.PrepareForModel(data, constants.MaxImageSize)
	if err != nil {
		return stylist.Image{}, errors.New("unsupported or corrupt image")
	}

	return stylist.Image{Data: prepared, MimeType: mimeType}, nil
}

// SetSource installs an uploaded photo or camera frame as the session source.
func (h *SessionsHandler) SetSource(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	img, err := readSourceImage(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry.Stylist.SetSource(img)
	entry.Events.SendEvent(SessionEvent{Type: EventSourceSet})

	respondJSON(w, http.StatusOK, sessionStatus(entry))
}

// ClearSource removes the session image entirely.
func (h *SessionsHandler) ClearSource(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	entry.Stylist.ClearSource()
	respondJSON(w, http.StatusOK, sessionStatus(entry))
}

// CurrentImage serves the currently displayed image bytes.
func (h *SessionsHandler) CurrentImage(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	img, ok := entry.Stylist.Current()
	if !ok {
		respondError(w, http.StatusNotFound, "no image in session")
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}
