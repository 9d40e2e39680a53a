// Package stylist implements the generation orchestrator: it owns the
// per-session image state, assembles prompts, gates requests so at most one
// generation is outstanding per session, and applies results atomically.
package stylist

// Image is an image payload with its mime type.
type Image struct {
	Data     []byte
	MimeType string
}

// SourceKind identifies the current shape of the session image state.
type SourceKind int

const (
	// SourceEmpty means no image has been captured or uploaded yet.
	SourceEmpty SourceKind = iota
	// SourceCaptured means the original capture/upload is the current image.
	SourceCaptured
	// SourceGenerated means the latest generated result is the current image.
	SourceGenerated
)

// ImageState is the session image state as an explicit tagged value:
// Empty, Captured(image), or Generated(image, parent). Once a generated
// result exists it becomes the source of subsequent generations, so edits
// chain cumulatively until an explicit reset returns to the original.
type ImageState struct {
	kind      SourceKind
	captured  Image
	generated Image
}

// Kind returns the current state tag.
func (s *ImageState) Kind() SourceKind {
	return s.kind
}

// SetCaptured replaces the state with a fresh capture/upload, discarding any
// generated chain.
func (s *ImageState) SetCaptured(img Image) {
	s.kind = SourceCaptured
	s.captured = img
	s.generated = Image{}
}

// ApplyGenerated records a successful generation result. It is a no-op on an
// empty state; a result cannot exist without a source.
func (s *ImageState) ApplyGenerated(img Image) {
	if s.kind == SourceEmpty {
		return
	}
	s.kind = SourceGenerated
	s.generated = img
}

// Source returns the image the next generation must use: the prior result
// when one exists, otherwise the original capture. The boolean is false for
// the empty state.
func (s *ImageState) Source() (Image, bool) {
	switch s.kind {
	case SourceCaptured:
		return s.captured, true
	case SourceGenerated:
		return s.generated, true
	default:
		return Image{}, false
	}
}

// Current returns the image to display, which follows the same rule as Source.
func (s *ImageState) Current() (Image, bool) {
	return s.Source()
}

// Original returns the capture/upload the chain started from.
func (s *ImageState) Original() (Image, bool) {
	if s.kind == SourceEmpty {
		return Image{}, false
	}
	return s.captured, true
}

// Reset drops the generated chain and returns to the original capture,
// starting a fresh feedback loop. Resetting an empty state is a no-op.
func (s *ImageState) Reset() {
	if s.kind == SourceEmpty {
		return
	}
	s.kind = SourceCaptured
	s.generated = Image{}
}

// Clear discards the state entirely (source removed or view unmounted).
func (s *ImageState) Clear() {
	*s = ImageState{}
}

// HasGenerated reports whether a generated result is the current image.
func (s *ImageState) HasGenerated() bool {
	return s.kind == SourceGenerated
}
