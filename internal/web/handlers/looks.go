package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stylemirror/stylemirror/internal/constants"
	"github.com/stylemirror/stylemirror/internal/database"
	"github.com/stylemirror/stylemirror/internal/stylist"
)

// Embedder computes embeddings for similarity search.
type Embedder interface {
	EmbedImage(ctx context.Context, imageData []byte) ([]float32, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// LookRecorder persists generated looks with a best-effort embedding.
// It implements the orchestrator's look sink.
type LookRecorder struct {
	store    database.LookWriter
	embedder Embedder // optional
}

// NewLookRecorder creates a look recorder. embedder may be nil; looks are
// then saved without embeddings and excluded from similarity search.
func NewLookRecorder(store database.LookWriter, embedder Embedder) *LookRecorder {
	return &LookRecorder{store: store, embedder: embedder}
}

// SaveLook stores one generated look.
func (lr *LookRecorder) SaveLook(ctx context.Context, sessionID string, kind stylist.OperationKind, prompt string, img stylist.Image) error {
	look := &database.StoredLook{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Kind:      string(kind),
		Prompt:    prompt,
		MimeType:  img.MimeType,
		Image:     img.Data,
		CreatedAt: time.Now().UTC(),
	}

	if lr.embedder != nil {
		embedding, err := lr.embedder.EmbedImage(ctx, img.Data)
		if err != nil {
			log.Printf("failed to embed look %s: %v", look.ID, err)
		} else {
			look.Embedding = embedding
		}
	}

	return lr.store.Save(ctx, look)
}

// LooksHandler serves the saved look history.
type LooksHandler struct {
	store    database.LookReader
	embedder Embedder // optional
}

// NewLooksHandler creates a new looks handler.
func NewLooksHandler(store database.LookReader, embedder Embedder) *LooksHandler {
	return &LooksHandler{store: store, embedder: embedder}
}

// lookSummary is the metadata view of a stored look; image bytes are served
// separately.
type lookSummary struct {
	ID        string  `json:"id"`
	SessionID string  `json:"session_id"`
	Kind      string  `json:"kind"`
	Prompt    string  `json:"prompt"`
	CreatedAt string  `json:"created_at"`
	Distance  float64 `json:"distance,omitempty"`
}

func summarize(look *database.StoredLook) lookSummary {
	return lookSummary{
		ID:        look.ID,
		SessionID: look.SessionID,
		Kind:      look.Kind,
		Prompt:    look.Prompt,
		CreatedAt: look.CreatedAt.Format(time.RFC3339),
	}
}

// List returns recent looks, newest first.
func (h *LooksHandler) List(w http.ResponseWriter, r *http.Request) {
	looks, err := h.store.List(r.Context(), constants.DefaultSearchLimit)
	if err != nil {
		log.Printf("failed to list looks: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list looks")
		return
	}

	summaries := make([]lookSummary, 0, len(looks))
	for i := range looks {
		summaries = append(summaries, summarize(&looks[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{"looks": summaries})
}

// Image serves the stored image bytes of one look.
func (h *LooksHandler) Image(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	look, err := h.store.Get(r.Context(), id)
	if err != nil {
		log.Printf("failed to get look %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to get look")
		return
	}
	if look == nil {
		respondError(w, http.StatusNotFound, "look not found")
		return
	}

	w.Header().Set("Content-Type", look.MimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(look.Image)
}

// FindSimilar searches the look history by text query or by reference look.
func (h *LooksHandler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text   string `json:"text,omitempty"`
		LookID string `json:"look_id,omitempty"`
		Limit  int    `json:"limit,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Limit <= 0 || req.Limit > constants.DefaultSearchLimit {
		req.Limit = constants.DefaultSearchLimit
	}

	var embedding []float32
	switch {
	case req.LookID != "":
		look, err := h.store.Get(r.Context(), req.LookID)
		if err != nil || look == nil {
			respondError(w, http.StatusNotFound, "reference look not found")
			return
		}
		embedding = look.Embedding
		if len(embedding) == 0 && h.embedder != nil {
			embedding, err = h.embedder.EmbedImage(r.Context(), look.Image)
			if err != nil {
				respondError(w, http.StatusBadGateway, "embedding service unavailable")
				return
			}
		}
	case req.Text != "":
		if h.embedder == nil {
			respondError(w, http.StatusServiceUnavailable, "text search requires the embedding service")
			return
		}
		var err error
		embedding, err = h.embedder.EmbedText(r.Context(), req.Text)
		if err != nil {
			respondError(w, http.StatusBadGateway, "embedding service unavailable")
			return
		}
	default:
		respondError(w, http.StatusBadRequest, "text or look_id is required")
		return
	}

	if len(embedding) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "reference look has no embedding")
		return
	}

	matches, err := h.store.FindSimilar(r.Context(), embedding, req.Limit)
	if err != nil {
		log.Printf("similarity search failed: %v", err)
		respondError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	summaries := make([]lookSummary, 0, len(matches))
	for i := range matches {
		s := summarize(&matches[i].Look)
		s.Distance = matches[i].Distance
		summaries = append(summaries, s)
	}
	respondJSON(w, http.StatusOK, map[string]any{"looks": summaries})
}
