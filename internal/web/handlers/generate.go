package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/stylist"
)

// GenerateHandler runs edit operations through the orchestrator.
type GenerateHandler struct {
	config       *config.Config
	registry     *SessionRegistry
	orchestrator *stylist.Orchestrator
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(cfg *config.Config, registry *SessionRegistry, orchestrator *stylist.Orchestrator) *GenerateHandler {
	return &GenerateHandler{
		config:       cfg,
		registry:     registry,
		orchestrator: orchestrator,
	}
}

// generateRequest is the wire format of a generation call.
type generateRequest struct {
	Kind        string   `json:"kind"`
	Destination string   `json:"destination,omitempty"`
	Aesthetic   string   `json:"aesthetic,omitempty"`
	Palette     string   `json:"palette,omitempty"`
	Tips        []string `json:"tips,omitempty"`
}

// buildParams resolves the request against the style catalog.
func (h *GenerateHandler) buildParams(req generateRequest) (stylist.Params, error) {
	params := stylist.Params{
		Destination: req.Destination,
		Tips:        req.Tips,
	}

	if req.Aesthetic != "" {
		found := false
		for _, a := range h.config.Styles.Aesthetics {
			if a.Name == req.Aesthetic {
				params.Aesthetic = a.Descriptor
				found = true
				break
			}
		}
		if !found {
			return stylist.Params{}, errors.New("unknown aesthetic")
		}
	}

	if req.Palette != "" {
		palette := h.config.Styles.FindPalette(req.Palette)
		if palette == nil {
			return stylist.Params{}, errors.New("unknown palette")
		}
		params.PaletteName = palette.Name
		params.PaletteDescriptor = palette.Descriptor
	}

	return params, nil
}

// runGeneration dispatches one operation and broadcasts lifecycle events.
// Shared between the JSON API and the voice handler.
func runGeneration(h *GenerateHandler, w http.ResponseWriter, r *http.Request, entry *SessionEntry, kind stylist.OperationKind, params stylist.Params) {
	entry.Events.SendEvent(SessionEvent{Type: EventGenerationStarted, Data: map[string]string{"kind": string(kind)}})

	outcome, err := h.orchestrator.Generate(r.Context(), entry.Stylist, kind, params)
	if err != nil {
		entry.Events.SendEvent(SessionEvent{Type: EventGenerationNoop, Message: err.Error()})
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if outcome.Applied {
		entry.Events.SendEvent(SessionEvent{Type: EventGenerationApplied, Data: map[string]string{"kind": string(kind)}})
	} else {
		entry.Events.SendEvent(SessionEvent{Type: EventGenerationNoop, Data: map[string]string{"kind": string(kind)}})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"kind":     string(kind),
		"accepted": outcome.Accepted,
		"applied":  outcome.Applied,
		"state":    stateString(entry.Stylist.Kind()),
	})
}

// Generate handles POST generation requests.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	kind := stylist.OperationKind(req.Kind)
	if !stylist.ValidKind(kind) {
		respondError(w, http.StatusBadRequest, "unknown operation kind")
		return
	}

	params, err := h.buildParams(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("generation request: session=%s kind=%s", entry.Stylist.ID, sanitizeForLog(req.Kind))
	runGeneration(h, w, r, entry, kind, params)
}
