package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// EventsHandler streams session lifecycle events to the browser.
type EventsHandler struct {
	registry *SessionRegistry
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(registry *SessionRegistry) *EventsHandler {
	return &EventsHandler{registry: registry}
}

// sendSSEEvent writes one SSE event and flushes.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
	flusher.Flush()
}

// Stream handles the SSE connection for one styling session. The stream ends
// when the client disconnects or the session is deleted.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	entry := getEntry(w, r, h.registry)
	if entry == nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventCh := entry.Events.AddListener()
	defer entry.Events.RemoveListener(eventCh)

	sendSSEEvent(w, flusher, "status", sessionStatus(entry))

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
		}
	}
}
