// internal/models/intent.go
package models

// AmbiguityLevel grades the score gap between the top two intent candidates.
type AmbiguityLevel string

const (
	AmbiguityNone     AmbiguityLevel = "none"
	AmbiguityLow      AmbiguityLevel = "low"
	AmbiguityMedium   AmbiguityLevel = "medium"
	AmbiguityHigh     AmbiguityLevel = "high"
	AmbiguityVeryHigh AmbiguityLevel = "very_high"
)

// UrgencyClass is the urgency attached to a leaf intent.
type UrgencyClass string

const (
	UrgencyNormal UrgencyClass = "normal"
	UrgencyUrgent UrgencyClass = "urgent"
)

// IntentCandidate is one scored leaf intent. Built fresh per classification
// call, never persisted.
type IntentCandidate struct {
	IntentID              string   `json:"intentId"` // domain.leaf
	Domain                string   `json:"domain"`
	Confidence            float64  `json:"confidence"`
	Evidence              []string `json:"evidence"`
	CriticalFieldsMissing int      `json:"criticalFieldsMissing"`
}

// Classification is the classifier's full result for one question.
type Classification struct {
	IntentID   string            `json:"intentId"`
	Domain     string            `json:"domain"`
	Confidence float64           `json:"confidence"`
	Urgency    UrgencyClass      `json:"urgency"`
	Ambiguity  AmbiguityLevel    `json:"ambiguity"`
	Evidence   []string          `json:"evidence"`
	Candidates []IntentCandidate `json:"candidates,omitempty"`
}

// IntentUnknown is returned when no signal and no generic pattern matches.
const IntentUnknown = "general.unknown"
