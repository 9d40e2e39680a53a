// Package handlers contains the HTTP handlers of the styling API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stylemirror/stylemirror/internal/web/middleware"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// getEntry resolves the styling session bound to the authenticated web
// session. On failure it writes an error response and returns nil.
func getEntry(w http.ResponseWriter, r *http.Request, registry *SessionRegistry) *SessionEntry {
	webSession := middleware.GetSessionFromContext(r.Context())
	if webSession == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}

	entry := registry.Get(webSession.ID)
	if entry == nil {
		respondError(w, http.StatusNotFound, "no styling session; create one first")
		return nil
	}
	return entry
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
