// internal/synthesis/synthesizer.go

// Package synthesis turns fused evidence into the answer text. A completion
// service is the primary writer when an API key is configured; a rule-based
// formatter implements the same interface and also serves as the runtime
// fallback, so the pipeline always produces a coherent answer.
package synthesis

import (
	"context"

	"livestock-advisor/internal/models"
)

// Request carries everything a synthesizer needs for one answer.
type Request struct {
	Question string
	IntentID string
	Entities map[string]interface{}
	Evidence []models.RetrievalHit

	// Hedged marks a hybrid answer: evidence was thin, so the text must
	// carry caveats and invite the missing details.
	Hedged bool
}

// Result is the synthesized answer plus how it was produced.
type Result struct {
	Text string
	// Fallback is true when the rule-based path answered after a primary
	// failure; the confidence unifier penalizes that path.
	Fallback bool
}

// Synthesizer writes one answer from evidence. Implementations must treat
// the evidence as the source of truth and never invent reference numbers.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, req Request) (string, error)
}
