// internal/strategy/selector_test.go

package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"livestock-advisor/internal/models"
	"livestock-advisor/pkg/registry"
)

func newSelector() *Selector {
	return NewSelector(registry.Default())
}

func TestSelect_Buckets(t *testing.T) {
	s := newSelector()

	tests := []struct {
		name         string
		completeness float64
		want         Action
	}{
		{"low completeness clarifies", 0.1, ActionClarify},
		{"middling completeness is hybrid", 0.55, ActionHybrid},
		{"high completeness answers", 0.95, ActionAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := s.Select(tt.completeness, 0.8, "performance.weight_target", models.UrgencyNormal, 0)
			assert.Equal(t, tt.want, d.Action)
		})
	}
}

func TestSelect_LowIntentConfidenceIsConservative(t *testing.T) {
	s := newSelector()

	// 0.45 clears the default clarify threshold but not the raised one.
	confident := s.Select(0.45, 0.8, "performance.weight_target", models.UrgencyNormal, 0)
	shaky := s.Select(0.45, 0.3, "performance.weight_target", models.UrgencyNormal, 0)

	assert.Equal(t, ActionHybrid, confident.Action)
	assert.Equal(t, ActionClarify, shaky.Action)
}

func TestSelect_UrgencyAnswersSooner(t *testing.T) {
	s := newSelector()

	// 0.6 is hybrid territory normally but clears the lowered warn threshold.
	normal := s.Select(0.6, 0.8, "health.mortality", models.UrgencyNormal, 0)
	urgent := s.Select(0.6, 0.8, "health.mortality", models.UrgencyUrgent, 0)

	assert.Equal(t, ActionHybrid, normal.Action)
	assert.Equal(t, ActionAnswer, urgent.Action)
}

func TestSelect_RoundEscalationForcesProgress(t *testing.T) {
	s := newSelector()

	// Two unresolved rounds already: even near-zero completeness must not
	// produce a third clarify.
	d := s.Select(0.01, 0.8, "performance.weight_target", models.UrgencyNormal, 2)

	assert.NotEqual(t, ActionClarify, d.Action)
	assert.True(t, d.RoundEscalated)
}

func TestSelect_ThresholdsStayOrderedAndClamped(t *testing.T) {
	s := newSelector()

	// Urgent + low confidence pulls thresholds both ways; the result must
	// stay in [0,1] with clarify <= warn.
	for _, round := range []int{0, 1, 2, 5} {
		for _, conf := range []float64{0.0, 0.3, 0.5, 1.0} {
			for _, urg := range []models.UrgencyClass{models.UrgencyNormal, models.UrgencyUrgent} {
				d := s.Select(0.5, conf, "nonexistent.intent", urg, round)
				assert.GreaterOrEqual(t, d.ClarifyThreshold, 0.0)
				assert.LessOrEqual(t, d.WarnThreshold, 1.0)
				assert.LessOrEqual(t, d.ClarifyThreshold, d.WarnThreshold)
			}
		}
	}
}
