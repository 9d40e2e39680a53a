package stylist

import (
	"fmt"
	"strings"
)

// OperationKind identifies one of the orchestrator's generation operations.
type OperationKind string

const (
	OpHair       OperationKind = "hair"
	OpOutfit     OperationKind = "outfit"
	OpBackground OperationKind = "background"
	OpRefine     OperationKind = "refine"
	OpRecolor    OperationKind = "recolor"
)

// ValidKind reports whether k names a known generation operation.
func ValidKind(k OperationKind) bool {
	switch k {
	case OpHair, OpOutfit, OpBackground, OpRefine, OpRecolor:
		return true
	}
	return false
}

// Params carries the optional parameters of a generation operation.
type Params struct {
	// Destination is the free-text scene description for background changes.
	// It must pass ValidatePrompt before reaching the orchestrator.
	Destination string
	// Aesthetic names a style from the catalog (hair and outfit operations).
	Aesthetic string
	// PaletteName and PaletteDescriptor describe the fixed recolor palette.
	PaletteName       string
	PaletteDescriptor string
	// Tips are the improvement suggestions applied by the refine operation.
	Tips []string
}

// identityDirective is appended to every edit prompt except scene changes,
// which allow hair and outfit to adapt to the new setting.
const identityDirective = "Keep the person's face, identity, pose and expression exactly the same. " +
	"Do not alter the background or lighting. The result must look like the same photo with only the requested change."

// BuildPrompt assembles the generation prompt for an operation. It is a pure
// function of the operation kind and parameters.
func BuildPrompt(kind OperationKind, params Params) string {
	var b strings.Builder

	switch kind {
	case OpHair:
		b.WriteString("Give the person in this photo a new hairstyle that flatters their face shape. ")
		if params.Aesthetic != "" {
			fmt.Fprintf(&b, "The hairstyle should fit a %s aesthetic. ", params.Aesthetic)
		}
		b.WriteString(identityDirective)

	case OpOutfit:
		b.WriteString("Dress the person in this photo in a new, stylish outfit. ")
		if params.Aesthetic != "" {
			fmt.Fprintf(&b, "The outfit should follow the %s aesthetic. ", params.Aesthetic)
		}
		b.WriteString("Keep the outfit appropriate for the setting shown. ")
		b.WriteString(identityDirective)

	case OpBackground:
		destination := params.Destination
		if destination == "" {
			destination = "a tasteful, softly lit studio"
		}
		fmt.Fprintf(&b, "Place the person in this photo in a new scene: %s. ", destination)
		b.WriteString("Keep the person's face, identity and pose exactly the same. ")
		b.WriteString("Hair and outfit may change contextually to suit the new scene, but the person must remain clearly recognizable.")

	case OpRefine:
		b.WriteString("Improve the style of the person in this photo by applying the following changes:\n")
		for i, tip := range params.Tips {
			fmt.Fprintf(&b, "%d. %s\n", i+1, tip)
		}
		b.WriteString(identityDirective)

	case OpRecolor:
		fmt.Fprintf(&b, "Recolor the person's outfit in this photo using the %s palette: %s. ",
			params.PaletteName, params.PaletteDescriptor)
		b.WriteString("Only the colors of the clothing may change. ")
		b.WriteString(identityDirective)
	}

	return b.String()
}

// BuildCritiquePrompt returns the prompt instructing the critique model to
// return a structured JSON review.
func BuildCritiquePrompt() string {
	return `You are a professional fashion stylist. Review the style of the person in this photo.

Respond with a single JSON object, no other text, in exactly this shape:
{
  "score": <integer 0-100, overall style rating>,
  "title": "<short headline for the review, max 8 words>",
  "critique": "<2-4 sentence honest review of the outfit, colors and fit>",
  "suggestions": ["<concrete improvement tip>", "..."]
}

Give 2 to 5 suggestions, most impactful first. Judge only clothing, colors,
fit and grooming. Never comment on body shape or facial features.`
}
