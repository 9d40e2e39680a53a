package handlers

import (
	"sync"

	"github.com/stylemirror/stylemirror/internal/stylist"
)

// SessionEntry pairs a styling session with its event broadcaster.
type SessionEntry struct {
	Stylist *stylist.Session
	Events  *EventBroadcaster
}

// SessionRegistry maps web session IDs to styling sessions. Each browser
// session owns exactly one styling session.
type SessionRegistry struct {
	mu      sync.RWMutex
	entries map[string]*SessionEntry
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		entries: make(map[string]*SessionEntry),
	}
}

// Create makes a fresh styling session for the web session, replacing any
// existing one.
func (r *SessionRegistry) Create(webID string, live bool) *SessionEntry {
	entry := &SessionEntry{
		Stylist: stylist.NewSession(live),
		Events:  &EventBroadcaster{},
	}

	r.mu.Lock()
	old := r.entries[webID]
	r.entries[webID] = entry
	r.mu.Unlock()

	if old != nil {
		old.Events.Close()
	}
	return entry
}

// Get returns the styling session for the web session, or nil.
func (r *SessionRegistry) Get(webID string) *SessionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[webID]
}

// Delete discards the styling session for the web session.
func (r *SessionRegistry) Delete(webID string) {
	r.mu.Lock()
	entry := r.entries[webID]
	delete(r.entries, webID)
	r.mu.Unlock()

	if entry != nil {
		entry.Events.Close()
	}
}

// Count returns the number of active styling sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
