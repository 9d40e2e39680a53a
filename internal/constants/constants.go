// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Upload limits
const (
	// MaxUploadSize is the maximum size of an uploaded source image or camera
	// frame in bytes (multipart form memory limit)
	MaxUploadSize = 20 << 20 // 20 MB

	// MaxImageSize is the maximum dimension (width or height) sent to the
	// generation and critique models
	MaxImageSize = 1024

	// MaxPromptLength is the maximum length of a free-text destination prompt
	MaxPromptLength = 100
)

// Processing constants
const (
	// WorkerPoolSize is the default number of parallel workers for batch critique
	WorkerPoolSize = 4

	// EventChannelBuffer is the buffer size for per-listener SSE event channels
	EventChannelBuffer = 16
)

// Similarity search constants
const (
	// DefaultSearchLimit is the default limit for similar-look search results
	DefaultSearchLimit = 20

	// HNSWMaxNeighbors is the M parameter of the in-memory HNSW graph
	HNSWMaxNeighbors = 16

	// HNSWEfSearch controls pgvector recall when the in-memory index is unavailable
	HNSWEfSearch = 100
)
