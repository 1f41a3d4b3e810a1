// internal/entity/extractor.go
package entity

import (
	"regexp"
	"strconv"
	"strings"

	"livestock-advisor/internal/textnorm"
)

// Extractor pulls raw entity fields out of free-text questions. Its output
// is the loosely-typed Raw map the normalizer consumes; it makes no attempt
// at canonicalization itself.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

var (
	breedPattern = regexp.MustCompile(
		`(?i)\b(ross\s?308|ross\s?708|cobb\s?500|cobb\s?700|hubbard(?:\s?(?:flex|classic|ja87))?|isa\s?brown|lohmann(?:\s?(?:brown|white))?|hy-?line(?:\s?brown)?)\b`)

	ageDaysPattern  = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:jours?|days?|j|d)\b`)
	ageWeeksPattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:semaines?|weeks?|sem|wk|w)\b`)

	weightPattern = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*(kg|kilos?|grammes?|g|lbs?|pounds?)\b`)
)

// sexMarkers maps folded tokens to raw sex values. Word boundaries matter:
// "poulets" must not match "poule", "normale" must not match "male".
var sexMarkers = []struct {
	pattern *regexp.Regexp
	value   string
}{
	{regexp.MustCompile(`\b(as hatched|straight run|non sexe|mixte|mixed)\b`), "as_hatched"},
	{regexp.MustCompile(`\b(femelles?|females?|poules?|hens?)\b`), "female"},
	{regexp.MustCompile(`\b(males?|coqs?|roosters?|masculin)\b`), "male"},
}

// symptomMarkers is the vocabulary of observable signs worth carrying as
// entities for health intents.
var symptomMarkers = []string{
	"diarrhee", "diarrhea", "boiterie", "lameness", "toux", "cough",
	"eternuement", "sneezing", "plumes herissees", "ruffled feathers",
	"abattu", "lethargie", "lethargy", "mortalite", "mortality",
	"perte d'appetit", "appetite loss", "croissance lente", "slow growth",
	"fiente", "droppings",
}

// Extract scans the question for breed, age, sex, weight and symptom
// mentions. It never fails: an unrecognized question yields an empty map.
func (x *Extractor) Extract(question string) Raw {
	raw := Raw{}
	folded := textnorm.Fold(question)

	if m := breedPattern.FindString(question); m != "" {
		raw["breed"] = m
	}

	// Days take precedence over weeks when both appear ("21 jours, 3 semaines"
	// is redundant phrasing, not a contradiction).
	if m := ageDaysPattern.FindStringSubmatch(question); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			raw["age_days"] = float64(days)
		}
	} else if m := ageWeeksPattern.FindStringSubmatch(question); m != nil {
		if weeks, err := strconv.Atoi(m[1]); err == nil {
			raw["age_weeks"] = float64(weeks)
		}
	}

	for _, sm := range sexMarkers {
		if sm.pattern.MatchString(folded) {
			raw["sex"] = sm.value
			break
		}
	}

	if m := weightPattern.FindStringSubmatch(question); m != nil {
		value := strings.ReplaceAll(m[1], ",", ".")
		if w, err := strconv.ParseFloat(value, 64); err == nil {
			raw["weight"] = w
			raw["weight_unit"] = strings.ToLower(m[2])
		}
	}

	var symptoms []string
	for _, marker := range symptomMarkers {
		if strings.Contains(folded, marker) {
			symptoms = append(symptoms, marker)
		}
	}
	if len(symptoms) > 0 {
		raw["symptoms"] = symptoms
	}

	return raw
}
