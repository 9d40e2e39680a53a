package database

import (
	"fmt"
	"sync"

	"github.com/coder/hnsw"

	"github.com/stylemirror/stylemirror/internal/constants"
)

// LookIndex wraps an HNSW graph over look embeddings, keyed by look ID.
// It is rebuilt from the database at startup and updated as looks are saved,
// giving fast approximate search without touching postgres on every query.
type LookIndex struct {
	graph    *hnsw.Graph[string]
	idToLook map[string]*StoredLook
	mu       sync.RWMutex
}

// NewLookIndex creates an empty look index.
func NewLookIndex() *LookIndex {
	return &LookIndex{
		idToLook: make(map[string]*StoredLook),
	}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = constants.HNSWMaxNeighbors
	g.Ml = 1.0 / float64(constants.HNSWMaxNeighbors)
	g.Distance = hnsw.CosineDistance
	return g
}

// BuildFromLooks replaces the index contents with the given looks. Looks
// without an embedding are skipped.
func (h *LookIndex) BuildFromLooks(looks []StoredLook) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(looks) == 0 {
		h.graph = nil
		h.idToLook = make(map[string]*StoredLook)
		return
	}

	g := newGraph()
	h.idToLook = make(map[string]*StoredLook, len(looks))

	for i := range looks {
		look := &looks[i]
		if len(look.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(look.ID, look.Embedding))
		h.idToLook[look.ID] = look
	}

	h.graph = g
}

// Add inserts or updates a single look in the index.
func (h *LookIndex) Add(look *StoredLook) {
	if len(look.Embedding) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.graph == nil {
		h.graph = newGraph()
	}
	h.graph.Add(hnsw.MakeNode(look.ID, look.Embedding))
	h.idToLook[look.ID] = look
}

// Remove drops a look from the index.
func (h *LookIndex) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.graph != nil {
		h.graph.Delete(id)
	}
	delete(h.idToLook, id)
}

// Search finds the k nearest looks to the query embedding. Distances are
// recomputed exactly for the returned candidates.
func (h *LookIndex) Search(query []float32, k int) ([]LookMatch, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, fmt.Errorf("index not initialized")
	}

	neighbors := h.graph.Search(query, k)

	matches := make([]LookMatch, 0, len(neighbors))
	for _, n := range neighbors {
		look, ok := h.idToLook[n.Key]
		if !ok || len(look.Embedding) == 0 {
			continue
		}
		matches = append(matches, LookMatch{
			Look:     *look,
			Distance: CosineDistance(query, look.Embedding),
		})
	}
	return matches, nil
}

// Count returns the number of indexed looks.
func (h *LookIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.idToLook)
}
