package voice

import (
	"strings"
	"testing"

	"github.com/stylemirror/stylemirror/internal/config"
)

var testPalettes = []config.Palette{
	{Name: "pastels", Descriptor: "soft colors", Keywords: []string{"pastel", "pastels"}},
	{Name: "neon", Descriptor: "vivid colors", Keywords: []string{"neon", "electric"}},
}

func reviewInterpreter() *Interpreter {
	return NewInterpreter(testPalettes, true)
}

func TestInterpret_Hair(t *testing.T) {
	cmd := reviewInterpreter().Interpret("give me a new hairstyle please")
	if cmd.Action != ActionHair {
		t.Errorf("expected hair, got %s", cmd.Action)
	}
	if cmd.Destination != "" || cmd.Palette != "" {
		t.Error("hair command must carry no parameters")
	}
}

func TestInterpret_Outfit(t *testing.T) {
	for _, transcript := range []string{
		"I want new clothes",
		"change my outfit",
		"dress me for dinner",
	} {
		if cmd := reviewInterpreter().Interpret(transcript); cmd.Action != ActionOutfit {
			t.Errorf("%q: expected outfit, got %s", transcript, cmd.Action)
		}
	}
}

func TestInterpret_Reset(t *testing.T) {
	if cmd := reviewInterpreter().Interpret("please start over"); cmd.Action != ActionReset {
		t.Errorf("expected reset, got %s", cmd.Action)
	}
}

func TestInterpret_BackgroundDestination(t *testing.T) {
	cmd := reviewInterpreter().Interpret("change background to snowy mountain")
	if cmd.Action != ActionBackground {
		t.Fatalf("expected background, got %s", cmd.Action)
	}
	if cmd.Destination != "snowy mountain" {
		t.Errorf("expected destination %q, got %q", "snowy mountain", cmd.Destination)
	}
}

func TestInterpret_BackgroundNormalizesCase(t *testing.T) {
	cmd := reviewInterpreter().Interpret("Change Background To Snowy Mountain")
	if cmd.Destination != "snowy mountain" {
		t.Errorf("destination must be lowercased, got %q", cmd.Destination)
	}
}

func TestInterpret_RightmostAnchorWins(t *testing.T) {
	// "to" occurs after "scene" and "background"; the rightmost anchor wins,
	// even though that cuts off part of the phrase.
	cmd := reviewInterpreter().Interpret("change scene background to the office")
	if cmd.Action != ActionBackground {
		t.Fatalf("expected background, got %s", cmd.Action)
	}
	if cmd.Destination != "the office" {
		t.Errorf("expected destination %q, got %q", "the office", cmd.Destination)
	}
}

func TestInterpret_BackgroundWithoutAnchorTailDropped(t *testing.T) {
	// Anchor present but nothing follows it: dropped silently.
	if cmd := reviewInterpreter().Interpret("change the background"); cmd.Action != ActionNone {
		t.Errorf("expected none, got %s", cmd.Action)
	}
}

func TestInterpret_BackgroundInvalidDestinationDropped(t *testing.T) {
	// The extracted destination fails validation (unsafe term): dropped.
	if cmd := reviewInterpreter().Interpret("change background to a nude beach"); cmd.Action != ActionNone {
		t.Errorf("expected none for unsafe destination, got %s", cmd.Action)
	}

	// Over-long destination: dropped.
	long := "change background to " + strings.Repeat("x ", 60)
	if cmd := reviewInterpreter().Interpret(long); cmd.Action != ActionNone {
		t.Errorf("expected none for over-long destination, got %s", cmd.Action)
	}
}

func TestInterpret_Critique(t *testing.T) {
	if cmd := reviewInterpreter().Interpret("rate my style"); cmd.Action != ActionCritique {
		t.Errorf("expected critique, got %s", cmd.Action)
	}
}

func TestInterpret_Recolor(t *testing.T) {
	cmd := reviewInterpreter().Interpret("make it pastel colored")
	if cmd.Action != ActionRecolor {
		t.Fatalf("expected recolor, got %s", cmd.Action)
	}
	if cmd.Palette != "pastels" {
		t.Errorf("expected palette pastels, got %q", cmd.Palette)
	}
}

func TestInterpret_LiveModeHasNoReviewCommands(t *testing.T) {
	live := NewInterpreter(testPalettes, false)
	if cmd := live.Interpret("rate my style"); cmd.Action != ActionNone {
		t.Errorf("critique must be disabled in the live flow, got %s", cmd.Action)
	}
	if cmd := live.Interpret("use the neon palette"); cmd.Action != ActionNone {
		t.Errorf("recolor must be disabled in the live flow, got %s", cmd.Action)
	}
}

func TestInterpret_PriorityOrder(t *testing.T) {
	// Hair terms outrank scene terms.
	cmd := reviewInterpreter().Interpret("change my hair to match the scene")
	if cmd.Action != ActionHair {
		t.Errorf("hair must win over background, got %s", cmd.Action)
	}

	// Outfit terms outrank reset terms.
	cmd = reviewInterpreter().Interpret("clear out my outfit")
	if cmd.Action != ActionOutfit {
		t.Errorf("outfit must win over reset, got %s", cmd.Action)
	}
}

func TestInterpret_UnmatchedIsSilent(t *testing.T) {
	for _, transcript := range []string{
		"what time is it",
		"hello there",
		"",
		"   ",
	} {
		if cmd := reviewInterpreter().Interpret(transcript); cmd.Action != ActionNone {
			t.Errorf("%q: expected none, got %s", transcript, cmd.Action)
		}
	}
}

func TestInterpret_Diacritics(t *testing.T) {
	cmd := reviewInterpreter().Interpret("change background to café terrace")
	if cmd.Action != ActionBackground || cmd.Destination != "cafe terrace" {
		t.Errorf("expected normalized destination %q, got %+v", "cafe terrace", cmd)
	}
}
