package ai

import "context"

// EditedImage is an image returned by a generation provider.
type EditedImage struct {
	Data     []byte
	MimeType string
}

// Critique contains the structured style review of a photo.
type Critique struct {
	// Score is an overall style rating between 0 and 100.
	Score int `json:"score"`
	// Title is a short headline for the review.
	Title string `json:"title"`
	// Critique is the full review text.
	Critique string `json:"critique"`
	// Suggestions are concrete improvement tips, most important first.
	Suggestions []string `json:"suggestions"`
}

// Critic reviews the style of a photo and returns a structured critique.
type Critic interface {
	Name() string
	// CritiqueStyle sends one image plus a prompt instructing the model to
	// return a JSON object. Code fences around the JSON are tolerated.
	CritiqueStyle(ctx context.Context, image []byte, mimeType, prompt string) (*Critique, error)
}

// Stylist is the full generation backend: image editing plus critique.
type Stylist interface {
	Critic
	// EditImage sends one image plus a text prompt and returns the first
	// inline image of the response. A (nil, nil) return means the model
	// produced no image; callers treat that as a no-op.
	EditImage(ctx context.Context, image []byte, mimeType, prompt string) (*EditedImage, error)
}

// Usage tracks token usage across provider calls.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
