// Package database defines the look-history storage contracts and the
// in-memory similarity index shared by its backends.
package database

import (
	"context"
	"math"
	"time"
)

// StoredLook is one persisted generation result.
type StoredLook struct {
	ID        string
	SessionID string
	Kind      string
	Prompt    string
	MimeType  string
	Image     []byte
	Embedding []float32 // optional; empty when the embedding server is unavailable
	CreatedAt time.Time
}

// LookMatch pairs a look with its cosine distance to a query embedding.
type LookMatch struct {
	Look     StoredLook
	Distance float64
}

// LookReader provides read access to the look history.
type LookReader interface {
	Get(ctx context.Context, id string) (*StoredLook, error)
	List(ctx context.Context, limit int) ([]StoredLook, error)
	FindSimilar(ctx context.Context, embedding []float32, limit int) ([]LookMatch, error)
}

// LookWriter persists looks.
type LookWriter interface {
	Save(ctx context.Context, look *StoredLook) error
	Delete(ctx context.Context, id string) error
}

// LookStore combines read and write access.
type LookStore interface {
	LookReader
	LookWriter
}

// CosineDistance computes 1 - cosine similarity between two vectors.
// Returns a value between 0 (identical) and 2 (opposite); mismatched or
// zero vectors yield the maximum distance.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2.0
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to handle floating point errors
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}
	return 1 - similarity
}
