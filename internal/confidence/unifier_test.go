// internal/confidence/unifier_test.go

package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"livestock-advisor/internal/models"
)

func TestUnify_WeightsSumToOne(t *testing.T) {
	for rt, w := range weightsByType {
		sum := w.sourceReliability + w.intentConfidence + w.completeness + w.validation
		assert.InDelta(t, 1.0, sum, 0.0001, "response type %s", rt)
	}
}

func TestUnify_MonotoneInEachComponent(t *testing.T) {
	base := Signals{
		SourceReliability:    0.5,
		IntentConfidence:     0.5,
		Completeness:         0.5,
		ValidationConfidence: 0.5,
	}
	bump := []func(Signals, float64) Signals{
		func(s Signals, v float64) Signals { s.SourceReliability = v; return s },
		func(s Signals, v float64) Signals { s.IntentConfidence = v; return s },
		func(s Signals, v float64) Signals { s.Completeness = v; return s },
		func(s Signals, v float64) Signals { s.ValidationConfidence = v; return s },
	}

	for rt := range weightsByType {
		for i, set := range bump {
			prev := -1.0
			for v := 0.0; v <= 1.0; v += 0.1 {
				score := Unify(rt, set(base, v)).UnifiedScore
				assert.GreaterOrEqual(t, score+1e-9, prev, "type %s component %d value %.1f", rt, i, v)
				prev = score
			}
		}
	}
}

func TestUnify_ExactTableHitScoresVeryHigh(t *testing.T) {
	breakdown := Unify(models.ResponseTableLookup, Signals{
		SourceReliability:    0.95,
		IntentConfidence:     0.7,
		Completeness:         1.0,
		ValidationConfidence: 0.9,
		ExactHit:             true,
	})

	assert.GreaterOrEqual(t, breakdown.UnifiedScore, 0.9)
	assert.Equal(t, models.ConfidenceVeryHigh, breakdown.Level)
}

func TestUnify_ClarificationIsPenalized(t *testing.T) {
	s := Signals{SourceReliability: 0.5, IntentConfidence: 0.5, Completeness: 0.5, ValidationConfidence: 0.5}

	clarify := Unify(models.ResponseClarification, s)
	structured := Unify(models.ResponseStructured, s)

	assert.Less(t, clarify.UnifiedScore, structured.UnifiedScore)
}

func TestUnify_FallbackPathIsPenalized(t *testing.T) {
	s := Signals{SourceReliability: 0.5, IntentConfidence: 0.6, Completeness: 0.5, ValidationConfidence: 0.5}

	direct := Unify(models.ResponseGenerative, s)
	s.FallbackPath = true
	fallback := Unify(models.ResponseGenerative, s)

	assert.InDelta(t, fallbackPathPenalty, direct.UnifiedScore-fallback.UnifiedScore, 0.0001)
}

func TestUnify_UnknownTypeUsesGenerativeWeights(t *testing.T) {
	s := Signals{SourceReliability: 0.4, IntentConfidence: 0.6, Completeness: 0.5, ValidationConfidence: 0.7}

	unknown := Unify(models.ResponseType("exotic"), s)
	generative := Unify(models.ResponseGenerative, s)

	assert.Equal(t, generative.UnifiedScore, unknown.UnifiedScore)
}

func TestLevelFor_Cutoffs(t *testing.T) {
	tests := []struct {
		score float64
		want  models.ConfidenceLevel
	}{
		{0.95, models.ConfidenceVeryHigh},
		{0.9, models.ConfidenceVeryHigh},
		{0.8, models.ConfidenceHigh},
		{0.6, models.ConfidenceModerate},
		{0.4, models.ConfidenceLow},
		{0.1, models.ConfidenceVeryLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.score), "score %.2f", tt.score)
	}
}

func TestUnify_Pure(t *testing.T) {
	s := Signals{SourceReliability: 0.7, IntentConfidence: 0.6, Completeness: 0.8, ValidationConfidence: 0.5, ExactHit: true}

	first := Unify(models.ResponseTableLookup, s)
	second := Unify(models.ResponseTableLookup, s)

	assert.Equal(t, first, second)
}
