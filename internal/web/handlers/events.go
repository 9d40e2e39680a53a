package handlers

import (
	"sync"

	"github.com/stylemirror/stylemirror/internal/constants"
)

// Event types broadcast over the session event stream.
const (
	EventGenerationStarted = "generation_started"
	EventGenerationApplied = "generation_applied"
	EventGenerationNoop    = "generation_noop"
	EventCritiqueReady     = "critique_ready"
	EventSourceSet         = "source_set"
	EventReset             = "reset"
	EventFacePresence      = "face_presence"
)

// SessionEvent is one lifecycle event of a styling session.
type SessionEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting for a
// styling session. The UI subscribes via SSE to mirror generation state.
type EventBroadcaster struct {
	listeners []chan SessionEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan SessionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan SessionEvent, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event SessionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Close closes all listener channels.
func (b *EventBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, listener := range b.listeners {
		close(listener)
	}
	b.listeners = nil
}
