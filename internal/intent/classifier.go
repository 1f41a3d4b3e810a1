// internal/intent/classifier.go

// Package intent scores a question against the registered domain -> leaf
// taxonomy and reports the winning intent with a confidence and an ambiguity
// level. Classification is pure text + context scoring, no external calls.
package intent

import (
	"sort"

	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/models"
	"livestock-advisor/internal/textnorm"
	"livestock-advisor/pkg/registry"
)

const (
	textWeight    = 0.7
	contextWeight = 0.3
	priorityBonus = 0.1

	// Matching any signal at all is the strong evidence; the fraction of the
	// signal set matched only refines it.
	matchBase         = 0.6
	matchFractionSpan = 0.4
	majorityBonus     = 0.1

	criticalBonus          = 0.25
	criticalMissingPenalty = 0.1

	dominanceGap     = 0.4
	dominanceBonus   = 0.2
	nearTieBand      = 0.1
	nearTiePenalty   = 0.1
	richnessPerField = 0.03
	richnessCap      = 5

	interrogativeConfidence = 0.3
	unknownConfidence       = 0.1
)

// genericInterrogatives catch questions that carry no domain signal but are
// clearly questions, so the caller can still route them somewhere useful.
var genericInterrogatives = []string{
	"combien", "quel", "quelle", "comment", "pourquoi", "que faire",
	"how", "what", "why", "when", "which", "?",
}

type Classifier struct {
	registry *registry.IntentRegistry
	logger   logger.Logger
}

func NewClassifier(reg *registry.IntentRegistry, log logger.Logger) *Classifier {
	return &Classifier{
		registry: reg,
		logger:   log.WithFields(map[string]interface{}{"component": "intent-classifier"}),
	}
}

// Classify scores every registered leaf against the question text and the
// stored entity context. It never fails: with no evidence it falls back to a
// generic-interrogative check and finally to the unknown intent.
func (c *Classifier) Classify(questionText string, entities map[string]interface{}) models.Classification {
	folded := textnorm.Fold(questionText)

	var candidates []models.IntentCandidate
	for _, def := range c.registry.All() {
		if len(def.Signals) == 0 {
			continue
		}
		cand, matched := c.scoreLeaf(&def, folded, entities)
		if matched {
			candidates = append(candidates, cand)
		}
	}

	if len(candidates) == 0 {
		return c.fallback(folded)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	winner := candidates[0]
	gap := winner.Confidence
	if len(candidates) > 1 {
		gap = winner.Confidence - candidates[1].Confidence
	}

	confidence := winner.Confidence
	if gap > dominanceGap {
		confidence += dominanceBonus
	}
	if tied := c.nearTied(candidates); tied > 0 {
		confidence *= 1 - nearTiePenalty*float64(min(tied, 3))
	}
	confidence += richnessPerField * float64(min(presentFieldCount(entities), richnessCap))
	confidence = clamp01(confidence)

	def := c.registry.Get(winner.IntentID)
	urgency := models.UrgencyNormal
	if def.IsUrgent() {
		urgency = models.UrgencyUrgent
	}

	result := models.Classification{
		IntentID:   winner.IntentID,
		Domain:     winner.Domain,
		Confidence: confidence,
		Urgency:    urgency,
		Ambiguity:  ambiguityFromGap(gap),
		Evidence:   winner.Evidence,
		Candidates: candidates,
	}
	c.logger.Debug("intent classified", map[string]interface{}{
		"intent":     result.IntentID,
		"confidence": result.Confidence,
		"ambiguity":  string(result.Ambiguity),
		"candidates": len(candidates),
	})
	return result
}

// scoreLeaf applies the per-candidate formula: weighted text and context
// match, a priority nudge, and a penalty for critical fields still missing.
func (c *Classifier) scoreLeaf(def *registry.Definition, folded string, entities map[string]interface{}) (models.IntentCandidate, bool) {
	var evidence []string
	for _, signal := range def.Signals {
		if textnorm.Contains(folded, signal) {
			evidence = append(evidence, signal)
		}
	}
	if len(evidence) == 0 {
		return models.IntentCandidate{}, false
	}

	fraction := float64(len(evidence)) / float64(len(def.Signals))
	textScore := matchBase + matchFractionSpan*fraction
	if len(evidence)*2 > len(def.Signals) {
		textScore += majorityBonus
	}
	textScore = clamp01(textScore)

	contextScore, criticalMissing := c.scoreContext(def, entities)

	score := textWeight*textScore + contextWeight*contextScore + priorityBonus*def.Priority
	if n := len(def.CriticalContext); n > 0 {
		score -= criticalMissingPenalty * float64(criticalMissing) / float64(n)
	}

	return models.IntentCandidate{
		IntentID:              def.IntentID,
		Domain:                def.Domain,
		Confidence:            clamp01(score),
		Evidence:              evidence,
		CriticalFieldsMissing: criticalMissing,
	}, true
}

func (c *Classifier) scoreContext(def *registry.Definition, entities map[string]interface{}) (score float64, criticalMissing int) {
	all := def.AllContextFields()
	if len(all) == 0 {
		return 0, 0
	}

	present := 0
	criticalPresent := 0
	for _, f := range all {
		has := fieldPresent(entities, f)
		if has {
			present++
		}
		if def.IsCritical(f) {
			if has {
				criticalPresent++
			} else {
				criticalMissing++
			}
		}
	}

	score = float64(present) / float64(len(all))
	if n := len(def.CriticalContext); n > 0 {
		score += criticalBonus * float64(criticalPresent) / float64(n)
	}
	return clamp01(score), criticalMissing
}

func (c *Classifier) fallback(folded string) models.Classification {
	confidence := unknownConfidence
	var evidence []string
	for _, pat := range genericInterrogatives {
		if textnorm.Contains(folded, pat) {
			confidence = interrogativeConfidence
			evidence = append(evidence, pat)
			break
		}
	}
	return models.Classification{
		IntentID:   models.IntentUnknown,
		Domain:     "general",
		Confidence: confidence,
		Urgency:    models.UrgencyNormal,
		Ambiguity:  models.AmbiguityVeryHigh,
		Evidence:   evidence,
	}
}

// nearTied counts non-winning candidates within the tie band of the winner.
func (c *Classifier) nearTied(candidates []models.IntentCandidate) int {
	tied := 0
	for _, cand := range candidates[1:] {
		if candidates[0].Confidence-cand.Confidence < nearTieBand {
			tied++
		}
	}
	return tied
}

func ambiguityFromGap(gap float64) models.AmbiguityLevel {
	switch {
	case gap >= 0.4:
		return models.AmbiguityNone
	case gap >= 0.25:
		return models.AmbiguityLow
	case gap >= 0.15:
		return models.AmbiguityMedium
	case gap >= 0.05:
		return models.AmbiguityHigh
	default:
		return models.AmbiguityVeryHigh
	}
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

func presentFieldCount(entities map[string]interface{}) int {
	n := 0
	for f := range entities {
		if fieldPresent(entities, f) {
			n++
		}
	}
	return n
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
