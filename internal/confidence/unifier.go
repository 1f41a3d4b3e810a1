// internal/confidence/unifier.go

// Package confidence combines the independent upstream signals (source
// reliability, intent confidence, completeness, validation confidence) into
// the single score and level stamped on every response.
package confidence

import (
	"fmt"

	"livestock-advisor/internal/models"
)

// weights is one response type's weighting of the four component signals.
// Each vector sums to 1.
type weights struct {
	sourceReliability float64
	intentConfidence  float64
	completeness      float64
	validation        float64
}

// Table lookups ride on the reliability of breeder tables and a complete key;
// generative fallbacks have no structured source to lean on, so intent and
// validation confidence carry them.
var weightsByType = map[models.ResponseType]weights{
	models.ResponseTableLookup:   {0.40, 0.15, 0.35, 0.10},
	models.ResponseStructured:    {0.30, 0.25, 0.25, 0.20},
	models.ResponseDocRetrieval:  {0.35, 0.25, 0.20, 0.20},
	models.ResponseGenerative:    {0.10, 0.35, 0.20, 0.35},
	models.ResponseClarification: {0.10, 0.40, 0.30, 0.20},
	models.ResponseComputed:      {0.35, 0.15, 0.30, 0.20},
}

// Adjustments applied after the weighted sum.
const (
	exactHitBonus        = 0.10
	clarificationPenalty = 0.10
	synergyBonus         = 0.05
	synergyCutoff        = 0.8
	lowValidationPenalty = 0.10
	lowValidationCutoff  = 0.3
	fallbackPathPenalty  = 0.10
)

// Signals are the inputs to one unification, all in [0,1].
type Signals struct {
	SourceReliability    float64
	IntentConfidence     float64
	Completeness         float64
	ValidationConfidence float64

	// ExactHit marks a deterministic structured-data match.
	ExactHit bool
	// FallbackPath marks a response produced after a primary path failed.
	FallbackPath bool
}

// Unify computes the weighted component sum for the response type, applies
// the fixed adjustments and grades the result. Pure: same inputs, same
// breakdown.
func Unify(responseType models.ResponseType, s Signals) models.ConfidenceBreakdown {
	w, ok := weightsByType[responseType]
	if !ok {
		w = weightsByType[models.ResponseGenerative]
	}

	src := clamp01(s.SourceReliability)
	intent := clamp01(s.IntentConfidence)
	completeness := clamp01(s.Completeness)
	validation := clamp01(s.ValidationConfidence)

	score := w.sourceReliability*src +
		w.intentConfidence*intent +
		w.completeness*completeness +
		w.validation*validation

	explanation := fmt.Sprintf("%s response", responseType)
	if s.ExactHit {
		score += exactHitBonus
		explanation += ", exact reference match"
	}
	if responseType == models.ResponseClarification {
		score -= clarificationPenalty
	}
	if completeness >= synergyCutoff && src >= synergyCutoff {
		score += synergyBonus
		explanation += ", strong source and context"
	}
	if validation < lowValidationCutoff {
		score -= lowValidationPenalty
		explanation += ", weak validation"
	}
	if s.FallbackPath {
		score -= fallbackPathPenalty
		explanation += ", fallback path"
	}
	score = clamp01(score)

	return models.ConfidenceBreakdown{
		UnifiedScore: score,
		Level:        levelFor(score),
		Components: map[string]float64{
			"source_reliability":    src,
			"intent_confidence":     intent,
			"completeness":          completeness,
			"validation_confidence": validation,
		},
		Explanation: explanation,
	}
}

func levelFor(score float64) models.ConfidenceLevel {
	switch {
	case score >= 0.9:
		return models.ConfidenceVeryHigh
	case score >= 0.75:
		return models.ConfidenceHigh
	case score >= 0.5:
		return models.ConfidenceModerate
	case score >= 0.3:
		return models.ConfidenceLow
	default:
		return models.ConfidenceVeryLow
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
