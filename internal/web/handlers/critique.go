package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stylemirror/stylemirror/internal/stylist"
)

// CritiqueHandler runs style critiques and manages suggestions.
type CritiqueHandler struct {
	registry     *SessionRegistry
	orchestrator *stylist.Orchestrator
}

// NewCritiqueHandler creates a new critique handler.
func NewCritiqueHandler(registry *SessionRegistry, orchestrator *stylist.Orchestrator) *CritiqueHandler {
	return &CritiqueHandler{
		registry:     registry,
		orchestrator: orchestrator,
	}
}

// Run requests a structured critique of the current image.
func (h *CritiqueHandler) Run(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	outcome, critique := h.orchestrator.Critique(r.Context(), entry.Stylist)

	if critique != nil {
		entry.Events.SendEvent(SessionEvent{Type: EventCritiqueReady, Data: critique})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"accepted": outcome.Accepted,
		"applied":  outcome.Applied,
		"critique": critique,
	})
}

// Get returns the stored critique, if any.
func (h *CritiqueHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	critique := entry.Stylist.Critique()
	if critique == nil {
		respondError(w, http.StatusNotFound, "no critique available")
		return
	}
	respondJSON(w, http.StatusOK, critique)
}

// DismissSuggestion removes one suggestion by index. Remaining suggestions
// keep their order; there is no undo.
func (h *CritiqueHandler) DismissSuggestion(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid suggestion index")
		return
	}

	if !entry.Stylist.DismissSuggestion(index) {
		respondError(w, http.StatusNotFound, "suggestion not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"suggestions": entry.Stylist.Suggestions(),
	})
}
