// Package voice maps free-text speech transcripts to stylist operations.
// One transcript produces at most one command; unrecognized speech maps to
// no action at all, which is the correct behavior rather than an error.
package voice

import (
	"strings"

	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/stylist"
)

// Action is the operation a transcript resolved to.
type Action string

const (
	ActionNone       Action = "none"
	ActionHair       Action = "hair"
	ActionOutfit     Action = "outfit"
	ActionReset      Action = "reset"
	ActionBackground Action = "background"
	ActionCritique   Action = "critique"
	ActionRecolor    Action = "recolor"
)

// Command is the result of interpreting one transcript.
type Command struct {
	Action Action
	// Destination carries the validated scene text for background commands.
	Destination string
	// Palette names the matched recolor palette.
	Palette string
}

// rule is one entry of the priority-ordered matcher table. Rules are
// evaluated top to bottom; the first rule whose predicate matches builds the
// command, so the ordering contract stays explicit and testable.
type rule struct {
	action Action
	match  func(transcript string) (Command, bool)
}

// Interpreter translates transcripts into commands using a fixed rule table.
type Interpreter struct {
	rules []rule
}

// backgroundAnchors are scanned right to left; the destination is the text
// after the rightmost anchor. With a transcript like "change scene
// background to the office" the trailing "to" wins over "background"; this
// rightmost-anchor policy is deliberate and must be preserved.
var backgroundAnchors = []string{"background", "scene", "to"}

var (
	hairTerms     = []string{"hair", "hairstyle", "haircut"}
	outfitTerms   = []string{"outfit", "clothes", "clothing", "wardrobe", "dress me"}
	resetTerms    = []string{"reset", "clear", "start over", "undo"}
	sceneTerms    = []string{"background", "scene"}
	critiqueTerms = []string{"rate", "critique", "review", "score", "judge"}
)

// containsAny reports whether the transcript contains any of the terms.
func containsAny(transcript string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(transcript, term) {
			return true
		}
	}
	return false
}

// simpleRule matches a vocabulary and emits a parameterless command.
func simpleRule(action Action, terms []string) rule {
	return rule{
		action: action,
		match: func(transcript string) (Command, bool) {
			if containsAny(transcript, terms) {
				return Command{Action: action}, true
			}
			return Command{}, false
		},
	}
}

// extractDestination finds the rightmost anchor word in the transcript and
// returns the trimmed text after it. The boolean is false when no anchor
// occurs or nothing follows the anchor.
func extractDestination(transcript string) (string, bool) {
	fields := strings.Fields(transcript)

	last := -1
	for i, field := range fields {
		for _, anchor := range backgroundAnchors {
			if field == anchor {
				last = i
			}
		}
	}
	if last < 0 || last == len(fields)-1 {
		return "", false
	}
	return strings.Join(fields[last+1:], " "), true
}

// backgroundRule matches scene-change commands and extracts the destination.
// A missing anchor or a destination that fails validation drops the command
// silently.
func backgroundRule() rule {
	return rule{
		action: ActionBackground,
		match: func(transcript string) (Command, bool) {
			if !containsAny(transcript, sceneTerms) {
				return Command{}, false
			}
			destination, ok := extractDestination(transcript)
			if !ok {
				return Command{}, false
			}
			if err := stylist.ValidatePrompt(destination); err != nil {
				return Command{}, false
			}
			return Command{Action: ActionBackground, Destination: destination}, true
		},
	}
}

// recolorRule matches palette keywords from the style catalog.
func recolorRule(palettes []config.Palette) rule {
	return rule{
		action: ActionRecolor,
		match: func(transcript string) (Command, bool) {
			for _, p := range palettes {
				for _, keyword := range p.Keywords {
					if strings.Contains(transcript, keyword) {
						return Command{Action: ActionRecolor, Palette: p.Name}, true
					}
				}
			}
			return Command{}, false
		},
	}
}

// NewInterpreter builds the matcher table. The review flag enables the
// photo-review commands (critique and recolor) on top of the live set.
// Priority order: hair, outfit, reset, background, then critique and
// recolor.
func NewInterpreter(palettes []config.Palette, review bool) *Interpreter {
	rules := []rule{
		simpleRule(ActionHair, hairTerms),
		simpleRule(ActionOutfit, outfitTerms),
		simpleRule(ActionReset, resetTerms),
		backgroundRule(),
	}
	if review {
		rules = append(rules,
			simpleRule(ActionCritique, critiqueTerms),
			recolorRule(palettes),
		)
	}
	return &Interpreter{rules: rules}
}

// Interpret maps a transcript to at most one command. Unmatched transcripts
// return ActionNone.
func (in *Interpreter) Interpret(transcript string) Command {
	normalized := normalizeTranscript(transcript)
	if normalized == "" {
		return Command{Action: ActionNone}
	}

	for _, r := range in.rules {
		if cmd, ok := r.match(normalized); ok {
			return cmd
		}
	}
	return Command{Action: ActionNone}
}
