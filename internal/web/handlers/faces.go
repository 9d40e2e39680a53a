package handlers

import (
	"io"
	"net/http"

	"github.com/stylemirror/stylemirror/internal/constants"
	"github.com/stylemirror/stylemirror/internal/faces"
)

// FacesHandler runs face detection on camera frames posted by the browser.
// The detected presence drives the live-session gate for hair and outfit
// operations; detection errors leave the previous signal in place.
type FacesHandler struct {
	registry *SessionRegistry
	detector *faces.Detector
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(registry *SessionRegistry, detector *faces.Detector) *FacesHandler {
	return &FacesHandler{
		registry: registry,
		detector: detector,
	}
}

// DetectFrame handles one camera frame. Responds with the boxes for overlay
// drawing and updates the session face-present signal.
func (h *FacesHandler) DetectFrame(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	if h.detector == nil {
		respondError(w, http.StatusServiceUnavailable, "face detection is not configured")
		return
	}

	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, _, err := r.FormFile("frame")
	if err != nil {
		respondError(w, http.StatusBadRequest, "frame file is required")
		return
	}
	defer file.Close()

	frame, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadSize))
	if err != nil || len(frame) == 0 {
		respondError(w, http.StatusBadRequest, "failed to read frame")
		return
	}

	boxes, err := h.detector.Detect(r.Context(), frame)
	if err != nil {
		// Keep the previous presence signal on detection failure.
		respondJSON(w, http.StatusOK, map[string]any{
			"face_present": entry.Stylist.FacePresent(),
			"boxes":        []faces.Box{},
			"stale":        true,
		})
		return
	}

	present := len(boxes) > 0
	if present != entry.Stylist.FacePresent() {
		entry.Events.SendEvent(SessionEvent{Type: EventFacePresence, Data: map[string]bool{"present": present}})
	}
	entry.Stylist.SetFacePresent(present)

	respondJSON(w, http.StatusOK, map[string]any{
		"face_present": present,
		"boxes":        boxes,
	})
}
