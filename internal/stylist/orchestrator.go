package stylist

import (
	"context"
	"log"

	"github.com/stylemirror/stylemirror/internal/ai"
)

// LookSaver persists successfully generated looks. Saving is best effort;
// the orchestrator logs and ignores failures.
type LookSaver interface {
	SaveLook(ctx context.Context, sessionID string, kind OperationKind, prompt string, img Image) error
}

// Outcome reports what a generation call did. Accepted is false when a
// precondition failed and the call was a silent no-op; Applied is true only
// when the session image state was mutated.
type Outcome struct {
	Accepted bool
	Applied  bool
}

// Orchestrator turns a styling intent into exactly one request to the
// generation service and applies the response atomically to the session
// image state. Any transport, parsing or service error is caught, logged and
// swallowed: the session falls back to its previous state with the in-flight
// flag cleared, and no retry is attempted.
type Orchestrator struct {
	stylist ai.Stylist
	critic  ai.Critic
	looks   LookSaver // optional
}

// NewOrchestrator creates an orchestrator. critic may equal stylist; looks
// may be nil to disable look persistence.
func NewOrchestrator(stylist ai.Stylist, critic ai.Critic, looks LookSaver) *Orchestrator {
	if critic == nil {
		critic = stylist
	}
	return &Orchestrator{
		stylist: stylist,
		critic:  critic,
		looks:   looks,
	}
}

// Generate runs one edit operation against the session. The returned error
// is non-nil only for input-validation failures; service failures are
// swallowed per the fail-silent policy.
func (o *Orchestrator) Generate(ctx context.Context, session *Session, kind OperationKind, params Params) (Outcome, error) {
	if !ValidKind(kind) {
		return Outcome{}, ErrUnknownOperation
	}
	if kind == OpBackground {
		if err := ValidatePrompt(params.Destination); err != nil {
			return Outcome{}, err
		}
	}
	if kind == OpRefine && len(params.Tips) == 0 {
		// Pull tips from the session critique; with every suggestion
		// dismissed the refine action is disabled.
		params.Tips = session.Suggestions()
		if len(params.Tips) == 0 {
			return Outcome{}, nil
		}
	}

	source, ok := session.beginGeneration(kind)
	if !ok {
		return Outcome{}, nil
	}

	prompt := BuildPrompt(kind, params)

	result, err := o.stylist.EditImage(ctx, source.Data, source.MimeType, prompt)
	if err != nil {
		log.Printf("generation failed for session %s (%s): %v", session.ID, kind, err)
		session.endGeneration(nil)
		return Outcome{Accepted: true}, nil
	}
	if result == nil {
		// The model returned no inline image; leave the state untouched.
		session.endGeneration(nil)
		return Outcome{Accepted: true}, nil
	}

	img := Image{Data: result.Data, MimeType: result.MimeType}
	session.endGeneration(&img)

	if o.looks != nil {
		if err := o.looks.SaveLook(ctx, session.ID, kind, prompt, img); err != nil {
			log.Printf("failed to save look for session %s: %v", session.ID, err)
		}
	}

	return Outcome{Accepted: true, Applied: true}, nil
}

// Critique requests a structured style review of the current image and
// stores it on the session. Preconditions and the failure policy match
// Generate: a failed call leaves the session unchanged and interactive.
func (o *Orchestrator) Critique(ctx context.Context, session *Session) (Outcome, *ai.Critique) {
	source, ok := session.beginGeneration("")
	if !ok {
		return Outcome{}, nil
	}

	critique, err := o.critic.CritiqueStyle(ctx, source.Data, source.MimeType, BuildCritiquePrompt())
	session.endGeneration(nil)
	if err != nil {
		log.Printf("critique failed for session %s: %v", session.ID, err)
		return Outcome{Accepted: true}, nil
	}

	session.SetCritique(critique)
	return Outcome{Accepted: true, Applied: true}, critique
}
