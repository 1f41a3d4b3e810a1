// pkg/registry/schema.go
package registry

// IntentRegistry is the full domain -> leaf-intent taxonomy. Loaded once at
// startup and treated as immutable configuration data.
type IntentRegistry struct {
	Version     string       `json:"version"`
	LastUpdated string       `json:"lastUpdated"`
	Intents     []Definition `json:"intents"`

	byID map[string]*Definition
}

// Definition describes one leaf intent.
type Definition struct {
	IntentID        string      `json:"id"` // domain.leaf
	Domain          string      `json:"domain"`
	Signals         []string    `json:"signals"`
	RequiredContext []string    `json:"requiredContext"`
	CriticalContext []string    `json:"criticalContext"`
	Priority        float64     `json:"priority"`
	Urgency         string      `json:"urgency"`    // normal | urgent
	AnswerMode      string      `json:"answerMode"` // table | documents | hybrid
	Thresholds      *Thresholds `json:"thresholds,omitempty"`
}

// Thresholds are the per-intent completeness cutoffs used by the strategy
// selector. When nil, the selector's defaults (0.4/0.7/0.9) apply.
type Thresholds struct {
	Clarify float64 `json:"clarify"`
	Warn    float64 `json:"warn"`
	Full    float64 `json:"full"`
}

// UniversalFields are useful for nearly every intent and carry a baseline
// weight in completeness scoring even when not listed as required.
var UniversalFields = []string{"breed", "age_days"}

// Get returns the definition for an intent id, or nil when unregistered.
func (r *IntentRegistry) Get(intentID string) *Definition {
	return r.byID[intentID]
}

// All returns every definition in registration order.
func (r *IntentRegistry) All() []Definition {
	return r.Intents
}

// IsUrgent reports whether the intent carries the urgent class.
func (d *Definition) IsUrgent() bool {
	return d != nil && d.Urgency == "urgent"
}

// AllContextFields returns the union of required and critical fields.
func (d *Definition) AllContextFields() []string {
	seen := make(map[string]bool, len(d.RequiredContext)+len(d.CriticalContext))
	var fields []string
	for _, f := range d.RequiredContext {
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	for _, f := range d.CriticalContext {
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	return fields
}

// IsCritical reports whether field is in the critical subset.
func (d *Definition) IsCritical(field string) bool {
	for _, f := range d.CriticalContext {
		if f == field {
			return true
		}
	}
	return false
}

func (r *IntentRegistry) index() {
	r.byID = make(map[string]*Definition, len(r.Intents))
	for i := range r.Intents {
		r.byID[r.Intents[i].IntentID] = &r.Intents[i]
	}
}
