package stylist

import (
	"bytes"
	"testing"
)

func TestImageState_EmptyHasNoSource(t *testing.T) {
	var s ImageState
	if _, ok := s.Source(); ok {
		t.Error("empty state must have no source")
	}
	if s.Kind() != SourceEmpty {
		t.Errorf("expected SourceEmpty, got %v", s.Kind())
	}
}

func TestImageState_CapturedIsSource(t *testing.T) {
	var s ImageState
	s.SetCaptured(Image{Data: []byte("capture"), MimeType: "image/jpeg"})

	src, ok := s.Source()
	if !ok {
		t.Fatal("expected a source after capture")
	}
	if !bytes.Equal(src.Data, []byte("capture")) {
		t.Error("source must be the captured image")
	}
}

func TestImageState_GeneratedBecomesSource(t *testing.T) {
	var s ImageState
	s.SetCaptured(Image{Data: []byte("capture"), MimeType: "image/jpeg"})
	s.ApplyGenerated(Image{Data: []byte("result-1"), MimeType: "image/png"})

	src, ok := s.Source()
	if !ok {
		t.Fatal("expected a source")
	}
	if !bytes.Equal(src.Data, []byte("result-1")) {
		t.Error("source must be the generated result, not the capture")
	}

	// Chaining: the next result replaces the source again.
	s.ApplyGenerated(Image{Data: []byte("result-2"), MimeType: "image/png"})
	src, _ = s.Source()
	if !bytes.Equal(src.Data, []byte("result-2")) {
		t.Error("source must follow the latest generated result")
	}

	// The original is still reachable for reset.
	orig, ok := s.Original()
	if !ok || !bytes.Equal(orig.Data, []byte("capture")) {
		t.Error("original capture must survive the generated chain")
	}
}

func TestImageState_ResetReturnsToOriginal(t *testing.T) {
	var s ImageState
	s.SetCaptured(Image{Data: []byte("capture"), MimeType: "image/jpeg"})
	s.ApplyGenerated(Image{Data: []byte("result"), MimeType: "image/png"})

	s.Reset()

	if s.Kind() != SourceCaptured {
		t.Errorf("expected SourceCaptured after reset, got %v", s.Kind())
	}
	src, _ := s.Source()
	if !bytes.Equal(src.Data, []byte("capture")) {
		t.Error("reset must start a fresh chain from the original capture")
	}
}

func TestImageState_ApplyGeneratedOnEmptyIsNoop(t *testing.T) {
	var s ImageState
	s.ApplyGenerated(Image{Data: []byte("orphan"), MimeType: "image/png"})
	if s.Kind() != SourceEmpty {
		t.Error("a result must not exist without a source")
	}
}

func TestImageState_NewCaptureDropsChain(t *testing.T) {
	var s ImageState
	s.SetCaptured(Image{Data: []byte("first"), MimeType: "image/jpeg"})
	s.ApplyGenerated(Image{Data: []byte("result"), MimeType: "image/png"})
	s.SetCaptured(Image{Data: []byte("second"), MimeType: "image/jpeg"})

	src, _ := s.Source()
	if !bytes.Equal(src.Data, []byte("second")) {
		t.Error("a new capture must discard the previous chain")
	}
	if s.HasGenerated() {
		t.Error("HasGenerated must be false after a fresh capture")
	}
}

func TestImageState_Clear(t *testing.T) {
	var s ImageState
	s.SetCaptured(Image{Data: []byte("capture"), MimeType: "image/jpeg"})
	s.Clear()
	if _, ok := s.Source(); ok {
		t.Error("cleared state must have no source")
	}
}
