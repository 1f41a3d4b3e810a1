// internal/entity/extractor_test.go
package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FrenchPerformanceQuestion(t *testing.T) {
	x := NewExtractor()

	raw := x.Extract("poids Ross 308 mâle 21 jours")

	assert.Equal(t, "Ross 308", raw["breed"])
	assert.Equal(t, float64(21), raw["age_days"])
	assert.Equal(t, "male", raw["sex"])
}

func TestExtract_WeeksAndWeight(t *testing.T) {
	x := NewExtractor()

	raw := x.Extract("mes cobb 500 font 1,2 kg à 3 semaines, c'est normal ?")

	assert.Equal(t, "cobb 500", raw["breed"])
	assert.Equal(t, float64(3), raw["age_weeks"])
	assert.Equal(t, 1.2, raw["weight"])
	assert.Equal(t, "kg", raw["weight_unit"])
}

func TestExtract_Symptoms(t *testing.T) {
	x := NewExtractor()

	raw := x.Extract("diarrhée et boiterie chez mes poulets de 28 jours")

	symptoms, ok := raw["symptoms"].([]string)
	require.True(t, ok)
	assert.Contains(t, symptoms, "diarrhee")
	assert.Contains(t, symptoms, "boiterie")
	assert.Equal(t, float64(28), raw["age_days"])
}

func TestExtract_EmptyQuestion(t *testing.T) {
	x := NewExtractor()

	raw := x.Extract("")
	assert.Empty(t, raw)

	raw = x.Extract("bonjour")
	assert.Empty(t, raw)
}
