package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/stylist"
	"github.com/stylemirror/stylemirror/internal/voice"
)

// VoiceHandler interprets speech transcripts and dispatches the resulting
// command. Unrecognized speech is a 200 with command "none", never an error.
type VoiceHandler struct {
	config   *config.Config
	registry *SessionRegistry
	generate *GenerateHandler
	critique *CritiqueHandler

	live   *voice.Interpreter
	review *voice.Interpreter
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(cfg *config.Config, registry *SessionRegistry, generate *GenerateHandler, critique *CritiqueHandler) *VoiceHandler {
	return &VoiceHandler{
		config:   cfg,
		registry: registry,
		generate: generate,
		critique: critique,
		live:     voice.NewInterpreter(cfg.Styles.Palettes, false),
		review:   voice.NewInterpreter(cfg.Styles.Palettes, true),
	}
}

// interpreterFor picks the command set for the session. The review commands
// (critique, recolor) only apply once there is an image to review.
func (h *VoiceHandler) interpreterFor(entry *SessionEntry) *voice.Interpreter {
	if entry.Stylist.Kind() != stylist.SourceEmpty {
		return h.review
	}
	return h.live
}

// Interpret handles POST voice transcripts.
func (h *VoiceHandler) Interpret(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	cmd := h.interpreterFor(entry).Interpret(req.Transcript)
	log.Printf("voice command: session=%s action=%s", entry.Stylist.ID, cmd.Action)

	switch cmd.Action {
	case voice.ActionHair:
		runGeneration(h.generate, w, r, entry, stylist.OpHair, stylist.Params{})

	case voice.ActionOutfit:
		runGeneration(h.generate, w, r, entry, stylist.OpOutfit, stylist.Params{})

	case voice.ActionBackground:
		runGeneration(h.generate, w, r, entry, stylist.OpBackground, stylist.Params{Destination: cmd.Destination})

	case voice.ActionRecolor:
		palette := h.config.Styles.FindPalette(cmd.Palette)
		if palette == nil {
			// The interpreter only emits catalog palettes; treat a miss as no command.
			respondJSON(w, http.StatusOK, map[string]any{"command": string(voice.ActionNone)})
			return
		}
		runGeneration(h.generate, w, r, entry, stylist.OpRecolor, stylist.Params{
			PaletteName:       palette.Name,
			PaletteDescriptor: palette.Descriptor,
		})

	case voice.ActionReset:
		entry.Stylist.Reset()
		entry.Events.SendEvent(SessionEvent{Type: EventReset})
		respondJSON(w, http.StatusOK, map[string]any{
			"command": string(cmd.Action),
			"state":   stateString(entry.Stylist.Kind()),
		})

	case voice.ActionCritique:
		h.critique.Run(w, r)

	default:
		respondJSON(w, http.StatusOK, map[string]any{"command": string(voice.ActionNone)})
	}
}
