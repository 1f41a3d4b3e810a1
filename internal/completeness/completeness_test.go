// internal/completeness/completeness_test.go

package completeness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestock-advisor/pkg/registry"
)

func newEvaluator() *Evaluator {
	return NewEvaluator(registry.Default())
}

func TestScore_FullContextScoresHigh(t *testing.T) {
	e := newEvaluator()

	res := e.Score(map[string]interface{}{
		"breed":    "Ross 308",
		"age_days": 21,
		"sex":      "male",
	}, "performance.weight_target", 0.8, 0.0)

	assert.GreaterOrEqual(t, res.Score, 0.7)
	assert.Empty(t, res.MissingFields)
}

func TestScore_EmptyContextScoresLow(t *testing.T) {
	e := newEvaluator()

	res := e.Score(nil, "performance.weight_target", 0.6, 0.0)

	assert.Less(t, res.Score, 0.4)
	assert.ElementsMatch(t, []string{"breed", "age_days", "sex"}, res.MissingFields)
}

func TestScore_MissingFieldsOrderedMostCriticalFirst(t *testing.T) {
	e := newEvaluator()

	res := e.Score(nil, "performance.weight_target", 0.5, 0.0)

	// breed and age_days are critical for this intent, sex is only required.
	require.Len(t, res.MissingFields, 3)
	assert.Equal(t, "sex", res.MissingFields[2])
}

func TestScore_CriticalFieldsWeighMore(t *testing.T) {
	e := newEvaluator()

	// Same number of fields present, but one set covers the critical fields.
	criticalPresent := e.Score(map[string]interface{}{
		"breed":    "Ross 308",
		"age_days": 21,
	}, "performance.weight_target", 0.5, 0.0)
	onlyRequired := e.Score(map[string]interface{}{
		"sex":      "male",
		"age_days": 21,
	}, "performance.weight_target", 0.5, 0.0)

	assert.Greater(t, criticalPresent.Score, onlyRequired.Score)
}

func TestScore_UnregisteredIntentFallsBackToExtractionScore(t *testing.T) {
	e := newEvaluator()

	res := e.Score(map[string]interface{}{"breed": "Ross 308"}, "weird.intent", 0.9, 0.55)

	assert.InDelta(t, 0.55, res.Score, 0.001)
	assert.Empty(t, res.MissingFields)
}

func TestScore_NoFieldIntentFallsBackToExtractionScore(t *testing.T) {
	e := newEvaluator()

	res := e.Score(nil, "general.unknown", 0.2, 0.3)

	assert.InDelta(t, 0.3, res.Score, 0.001)
}

func TestScore_ConfidenceBonusIsCapped(t *testing.T) {
	e := newEvaluator()
	entities := map[string]interface{}{"breed": "Ross 308"}

	low := e.Score(entities, "performance.weight_target", 0.0, 0.0)
	high := e.Score(entities, "performance.weight_target", 1.0, 0.0)

	assert.LessOrEqual(t, high.Score-low.Score, confidenceBonusCap+0.001)
}

func TestScore_Deterministic(t *testing.T) {
	e := newEvaluator()
	entities := map[string]interface{}{"breed": "Cobb 500", "age_days": 14}

	first := e.Score(entities, "performance.growth_rate", 0.7, 0.0)
	second := e.Score(entities, "performance.growth_rate", 0.7, 0.0)

	assert.Equal(t, first, second)
}
