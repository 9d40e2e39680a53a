package handlers

import (
	"net/http"

	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/constants"
	"github.com/stylemirror/stylemirror/internal/stylist"
)

// ConfigHandler exposes the style catalog and API limits to the frontend.
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{config: cfg}
}

// Get returns the public configuration.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	palettes := make([]map[string]string, 0, len(h.config.Styles.Palettes))
	for _, p := range h.config.Styles.Palettes {
		palettes = append(palettes, map[string]string{
			"name":       p.Name,
			"descriptor": p.Descriptor,
		})
	}

	aesthetics := make([]map[string]string, 0, len(h.config.Styles.Aesthetics))
	for _, a := range h.config.Styles.Aesthetics {
		aesthetics = append(aesthetics, map[string]string{
			"name":       a.Name,
			"descriptor": a.Descriptor,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"palettes":   palettes,
		"aesthetics": aesthetics,
		"critic":     h.config.Critic,
		"operations": []string{
			string(stylist.OpHair),
			string(stylist.OpOutfit),
			string(stylist.OpBackground),
			string(stylist.OpRefine),
			string(stylist.OpRecolor),
		},
		"limits": map[string]int{
			"max_prompt_length": constants.MaxPromptLength,
			"max_upload_bytes":  constants.MaxUploadSize,
		},
	})
}
