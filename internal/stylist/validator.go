package stylist

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stylemirror/stylemirror/internal/constants"
)

// Validation errors for free-text destination prompts. Exactly one is
// surfaced per input: the rules are checked in order and the first failure
// wins.
var (
	ErrPromptTooLong      = errors.New("prompt is too long")
	ErrPromptInvalidChars = errors.New("prompt contains invalid characters")
	ErrPromptUnsafe       = errors.New("prompt contains unsafe content")
)

// ErrUnknownOperation is returned for an operation kind outside the fixed set.
var ErrUnknownOperation = errors.New("unknown operation kind")

// promptDenylist is matched case-insensitively as substrings. This is a
// defense-in-depth client-side filter, not a security boundary; the external
// service applies its own policy independently.
var promptDenylist = []string{
	"nude",
	"naked",
	"nsfw",
	"explicit",
	"undress",
	"lingerie",
	"gore",
	"blood",
	"violence",
	"weapon",
}

// ValidatePrompt gates a free-text destination prompt before it reaches the
// orchestrator. Empty text is valid (the parameter is simply unset).
func ValidatePrompt(text string) error {
	if text == "" {
		return nil
	}

	// The limit counts characters, not bytes; multibyte letters are legal.
	if utf8.RuneCountInString(text) > constants.MaxPromptLength {
		return ErrPromptTooLong
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		switch r {
		case ',', '.', '-':
			continue
		}
		return ErrPromptInvalidChars
	}

	lower := strings.ToLower(text)
	for _, term := range promptDenylist {
		if strings.Contains(lower, term) {
			return ErrPromptUnsafe
		}
	}

	return nil
}
