// internal/strategy/selector.go

// Package strategy turns a completeness score into one of three actions:
// ask for clarification, answer with caveats (hybrid), or answer outright.
package strategy

import (
	"livestock-advisor/internal/models"
	"livestock-advisor/pkg/registry"
)

// Action is the selector's terminal decision.
type Action string

const (
	ActionClarify Action = "clarify"
	ActionHybrid  Action = "hybrid"
	ActionAnswer  Action = "answer"
)

const (
	defaultClarify = 0.4
	defaultWarn    = 0.7
	defaultFull    = 0.9

	// Adjustment margin applied when intent confidence is shaky (raise
	// thresholds, be conservative) or the intent is urgent (lower them,
	// answer sooner).
	adjustMargin       = 0.15
	lowConfidenceLimit = 0.5

	// After this many unresolved clarification rounds on one topic the
	// clarify threshold collapses so the system answers instead of looping.
	maxClarifyRounds = 2
)

// Decision carries the chosen action plus the thresholds that produced it,
// for logging and confidence explanation downstream.
type Decision struct {
	Action           Action
	ClarifyThreshold float64
	WarnThreshold    float64
	RoundEscalated   bool
}

type Selector struct {
	registry *registry.IntentRegistry
}

func NewSelector(reg *registry.IntentRegistry) *Selector {
	return &Selector{registry: reg}
}

// Select applies the per-intent thresholds, adjusted for confidence, urgency
// and the clarification-round count, then buckets the completeness score.
// Thresholds are clamped to [0,1] and re-ordered after adjustment so a lowered
// warn can never sit below clarify.
func (s *Selector) Select(completeness, intentConfidence float64, intentID string, urgency models.UrgencyClass, clarificationRound int) Decision {
	clarify, warn := defaultClarify, defaultWarn
	if def := s.registry.Get(intentID); def != nil && def.Thresholds != nil {
		clarify, warn = def.Thresholds.Clarify, def.Thresholds.Warn
	}

	if intentConfidence < lowConfidenceLimit {
		clarify += adjustMargin
		warn += adjustMargin
	}
	if urgency == models.UrgencyUrgent {
		clarify -= adjustMargin
		warn -= adjustMargin
	}

	escalated := false
	if clarificationRound >= maxClarifyRounds {
		// Force progress: anything answers on the third attempt.
		clarify = 0
		escalated = true
	}

	clarify = clamp01(clarify)
	warn = clamp01(warn)
	if warn < clarify {
		warn = clarify
	}

	action := ActionAnswer
	switch {
	case completeness < clarify:
		action = ActionClarify
	case completeness < warn:
		action = ActionHybrid
	}

	return Decision{
		Action:           action,
		ClarifyThreshold: clarify,
		WarnThreshold:    warn,
		RoundEscalated:   escalated,
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
