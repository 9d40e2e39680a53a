package stylist

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stylemirror/stylemirror/internal/ai"
)

// Session holds the mutable state of one styling session: the image state,
// the single in-flight flag, the latest critique and the face-presence
// signal. All access goes through methods holding the session mutex; the
// flag gives each session global mutual exclusion over generation calls.
type Session struct {
	ID        string
	Live      bool // live camera workflow; gates hair/outfit on face presence
	CreatedAt time.Time

	mu          sync.Mutex
	state       ImageState
	inFlight    bool
	critique    *ai.Critique
	facePresent bool
}

// NewSession creates a session. Live sessions require a detected face (or an
// existing generated image) before hair and outfit operations are enabled.
func NewSession(live bool) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Live:      live,
		CreatedAt: time.Now(),
	}
}

// SetSource installs a fresh capture/upload and starts a new edit chain.
func (s *Session) SetSource(img Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetCaptured(img)
	s.critique = nil
}

// ClearSource removes the image state entirely.
func (s *Session) ClearSource() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Clear()
	s.critique = nil
}

// Reset returns to the original capture, discarding the generated chain.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Reset()
}

// Current returns the currently displayed image.
func (s *Session) Current() (Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Current()
}

// Kind returns the image state tag.
func (s *Session) Kind() SourceKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Kind()
}

// InFlight reports whether a generation request is outstanding.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// SetFacePresent records the latest face-detection signal for the session.
func (s *Session) SetFacePresent(present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facePresent = present
}

// FacePresent returns the latest face-detection signal.
func (s *Session) FacePresent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facePresent
}

// faceGated reports whether the operation is blocked by the face-presence
// rule: in the live workflow, hair and outfit stay disabled until a face is
// detected or a generated image already exists.
func (s *Session) faceGated(kind OperationKind) bool {
	if !s.Live {
		return false
	}
	if kind != OpHair && kind != OpOutfit {
		return false
	}
	return !s.facePresent && !s.state.HasGenerated()
}

// beginGeneration checks the orchestrator preconditions and, when they hold,
// marks the session in-flight and returns the source image for the request.
// A false return means the call must be a silent no-op.
func (s *Session) beginGeneration(kind OperationKind) (Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return Image{}, false
	}
	source, ok := s.state.Source()
	if !ok {
		return Image{}, false
	}
	if s.faceGated(kind) {
		return Image{}, false
	}

	s.inFlight = true
	return source, true
}

// endGeneration clears the in-flight flag and, when a result is present,
// applies it to the image state. It always runs, success or failure.
func (s *Session) endGeneration(result *Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false
	if result != nil {
		s.state.ApplyGenerated(*result)
	}
}

// SetCritique stores the latest critique result.
func (s *Session) SetCritique(c *ai.Critique) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.critique = c
}

// Critique returns the latest critique, or nil.
func (s *Session) Critique() *ai.Critique {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.critique
}

// Suggestions returns a copy of the remaining critique suggestions.
func (s *Session) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.critique == nil {
		return nil
	}
	out := make([]string, len(s.critique.Suggestions))
	copy(out, s.critique.Suggestions)
	return out
}

// DismissSuggestion removes the suggestion at index i, preserving the order
// of the rest. There is no undo. Returns false for an out-of-range index.
func (s *Session) DismissSuggestion(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.critique == nil || i < 0 || i >= len(s.critique.Suggestions) {
		return false
	}
	s.critique.Suggestions = append(s.critique.Suggestions[:i], s.critique.Suggestions[i+1:]...)
	return true
}
