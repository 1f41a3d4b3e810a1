// internal/completeness/completeness.go

// Package completeness scores how much of an intent's required context is
// already known. The score drives strategy selection, so it is deterministic:
// the same entities, intent and extraction score always yield the same result.
package completeness

import (
	"sort"

	"livestock-advisor/pkg/registry"
)

// Field weights. Critical fields dominate, universally-useful fields
// (breed, age) count more than merely-required ones even when an intent
// does not list them as critical.
const (
	criticalWeight  = 3.0
	universalWeight = 1.5
	requiredWeight  = 1.0

	confidenceBonusWeight = 0.1
	confidenceBonusCap    = 0.1
)

// Result is the completeness judgement for one turn.
type Result struct {
	Score         float64
	MissingFields []string
}

type Evaluator struct {
	registry *registry.IntentRegistry
}

func NewEvaluator(reg *registry.IntentRegistry) *Evaluator {
	return &Evaluator{registry: reg}
}

// Score computes present-weight / total-weight over the intent's context
// fields, plus a small bonus proportional to intent confidence. When the
// intent is unregistered or defines no fields, the raw extraction score
// stands in. Missing fields come back ordered most-critical-first.
func (e *Evaluator) Score(entities map[string]interface{}, intentID string, intentConfidence, extractionScore float64) Result {
	def := e.registry.Get(intentID)
	if def == nil || len(def.AllContextFields()) == 0 {
		return Result{Score: clamp01(extractionScore)}
	}

	var totalWeight, presentWeight float64
	var missing []string
	for _, field := range def.AllContextFields() {
		w := fieldWeight(def, field)
		totalWeight += w
		if fieldPresent(entities, field) {
			presentWeight += w
		} else {
			missing = append(missing, field)
		}
	}

	score := presentWeight / totalWeight
	bonus := confidenceBonusWeight * intentConfidence
	if bonus > confidenceBonusCap {
		bonus = confidenceBonusCap
	}
	score = clamp01(score + bonus)

	sort.SliceStable(missing, func(i, j int) bool {
		return fieldWeight(def, missing[i]) > fieldWeight(def, missing[j])
	})

	return Result{Score: score, MissingFields: missing}
}

func fieldWeight(def *registry.Definition, field string) float64 {
	if def.IsCritical(field) {
		return criticalWeight
	}
	for _, f := range registry.UniversalFields {
		if f == field {
			return universalWeight
		}
	}
	return requiredWeight
}

func fieldPresent(entities map[string]interface{}, field string) bool {
	v, ok := entities[field]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case []string:
		return len(t) > 0
	case []interface{}:
		return len(t) > 0
	default:
		return true
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
