// internal/entity/normalizer.go
package entity

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/models"
	"livestock-advisor/internal/textnorm"
)

// Plausibility bounds. Values outside are dropped, never errored on.
const (
	maxPlausibleAgeDays  = 500
	minPlausibleWeightG  = 1.0
	maxPlausibleWeightG  = 10000.0
	minimumConfidence    = 0.1
	inferredConfidence   = 0.7
)

// Normalizer canonicalizes raw extracted fields into the internal
// vocabulary. It never fails: any field that cannot be converted is
// omitted and the rest of the fields are kept.
type Normalizer struct {
	logger logger.Logger
}

func NewNormalizer(log logger.Logger) *Normalizer {
	return &Normalizer{
		logger: log.WithFields(map[string]interface{}{"component": "entity-normalizer"}),
	}
}

// breedAliases maps a folded, compacted spelling to the canonical casing.
var breedAliases = map[string]string{
	"ross308":      "Ross 308",
	"ross708":      "Ross 708",
	"cobb500":      "Cobb 500",
	"cobb700":      "Cobb 700",
	"hubbard":      "Hubbard",
	"hubbardflex":  "Hubbard Flex",
	"hubbardja87":  "Hubbard JA87",
	"isabrown":     "ISA Brown",
	"lohmann":      "Lohmann Brown",
	"lohmannbrown": "Lohmann Brown",
	"lohmannwhite": "Lohmann White",
	"hyline":       "Hy-Line Brown",
	"hylinebrown":  "Hy-Line Brown",
}

// layerBreeds are egg-laying lines; an unsexed question about one of these
// implies female birds.
var layerBreeds = map[string]bool{
	"ISA Brown":     true,
	"Lohmann Brown": true,
	"Lohmann White": true,
	"Hy-Line Brown": true,
}

var sexAliases = map[string]models.Sex{
	"male": models.SexMale, "m": models.SexMale, "coq": models.SexMale,
	"rooster": models.SexMale, "masculin": models.SexMale,
	"female": models.SexFemale, "f": models.SexFemale, "femelle": models.SexFemale,
	"poule": models.SexFemale, "hen": models.SexFemale,
	"as_hatched": models.SexAsHatched, "as hatched": models.SexAsHatched,
	"mixed": models.SexAsHatched, "mixte": models.SexAsHatched,
	"straight run": models.SexAsHatched, "non sexe": models.SexAsHatched,
}

var freeTextAge = regexp.MustCompile(`(?i)(\d{1,3})\s*(jours?|days?|j|d|semaines?|weeks?|sem|wk|w)\b`)

var compactPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize converts any accepted raw shape into NormalizedEntities. Field
// resolution priority: explicit specific value > generic value > inferred
// value. The returned normalization confidence is the average of per-field
// confidences, or 0.1 when nothing could be normalized.
func (n *Normalizer) Normalize(rawInput interface{}) models.NormalizedEntities {
	raw := RawFrom(rawInput)
	var out models.NormalizedEntities
	var confidences []float64

	if breed, conf, ok := n.normalizeBreed(raw); ok {
		out.Breed = breed
		confidences = append(confidences, conf)
	}

	if days, conf, ok := n.normalizeAge(raw); ok {
		weeks := days / 7
		out.AgeDays = &days
		out.AgeWeeks = &weeks
		confidences = append(confidences, conf)
	}

	if weight, conf, ok := n.normalizeWeight(raw); ok {
		out.WeightGrams = &weight
		confidences = append(confidences, conf)
	}

	if sex, conf, ok := n.normalizeSex(raw, out.Breed); ok {
		out.Sex = sex
		confidences = append(confidences, conf)
	}

	if symptoms := n.normalizeSymptoms(raw); len(symptoms) > 0 {
		out.Symptoms = symptoms
		confidences = append(confidences, 1.0)
	}

	if ct, conf, ok := n.normalizeContextType(raw, out.Symptoms); ok {
		out.ContextType = ct
		confidences = append(confidences, conf)
	}

	if len(confidences) == 0 {
		out.NormalizationConfidence = minimumConfidence
		return out
	}

	total := 0.0
	for _, c := range confidences {
		total += c
	}
	out.NormalizationConfidence = total / float64(len(confidences))
	return out
}

func (n *Normalizer) normalizeBreed(raw Raw) (string, float64, bool) {
	// "breed" is the specific field; "line" and "race" are generic synonyms.
	value, ok := raw.str("breed", "line", "race")
	if !ok {
		return "", 0, false
	}

	compact := compactPattern.ReplaceAllString(textnorm.Fold(value), "")
	if canonical, found := breedAliases[compact]; found {
		return canonical, 1.0, true
	}

	// Unknown but present breed: keep it title-cased rather than dropping a
	// directly provided fact.
	n.logger.Debug("unrecognized breed kept as-is", map[string]interface{}{"breed": value})
	return titleCase(value), 0.8, true
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		// First rune, not first byte: accented breed names are multibyte.
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func (n *Normalizer) normalizeAge(raw Raw) (int, float64, bool) {
	if v, ok := raw.num("age_days"); ok {
		return n.plausibleAge(int(v), 1.0)
	}
	if v, ok := raw.num("age_weeks"); ok {
		return n.plausibleAge(int(v)*7, 1.0)
	}
	// Free-text forms: "3 semaines", "21 days", "21j".
	if s, ok := raw.str("age", "age_text"); ok {
		if m := freeTextAge.FindStringSubmatch(s); m != nil {
			value, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, 0, false
			}
			unit := textnorm.Fold(m[2])
			if strings.HasPrefix(unit, "sem") || strings.HasPrefix(unit, "w") {
				value *= 7
			}
			return n.plausibleAge(value, 0.9)
		}
	}
	if v, ok := raw.num("age"); ok {
		// A bare number is assumed to be days.
		return n.plausibleAge(int(v), 0.8)
	}
	return 0, 0, false
}

func (n *Normalizer) plausibleAge(days int, conf float64) (int, float64, bool) {
	if days < 0 || days > maxPlausibleAgeDays {
		n.logger.Debug("implausible age dropped", map[string]interface{}{"ageDays": days})
		return 0, 0, false
	}
	return days, conf, true
}

func (n *Normalizer) normalizeWeight(raw Raw) (float64, float64, bool) {
	var grams float64
	var conf float64

	if v, ok := raw.num("weight_grams", "weight_g"); ok {
		grams, conf = v, 1.0
	} else if v, ok := raw.num("weight_kg"); ok {
		grams, conf = v*1000, 1.0
	} else if v, ok := raw.num("weight"); ok {
		unit, _ := raw.str("weight_unit")
		grams, conf = convertWeight(v, unit), 1.0
	} else if s, ok := raw.str("weight"); ok {
		m := regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(kg|kilos?|grammes?|g|lbs?|pounds?)?`).FindStringSubmatch(textnorm.Fold(s))
		if m == nil {
			return 0, 0, false
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			return 0, 0, false
		}
		grams, conf = convertWeight(v, m[2]), 0.9
	} else {
		return 0, 0, false
	}

	if grams < minPlausibleWeightG || grams > maxPlausibleWeightG {
		n.logger.Debug("implausible weight dropped", map[string]interface{}{"weightGrams": grams})
		return 0, 0, false
	}
	return grams, conf, true
}

func convertWeight(value float64, unit string) float64 {
	switch {
	case strings.HasPrefix(unit, "kg"), strings.HasPrefix(unit, "kilo"):
		return value * 1000
	case strings.HasPrefix(unit, "lb"), strings.HasPrefix(unit, "pound"):
		return value * 453.592
	default:
		return value
	}
}

func (n *Normalizer) normalizeSex(raw Raw, breed string) (models.Sex, float64, bool) {
	if s, ok := raw.str("sex", "sexe"); ok {
		if sex, found := sexAliases[textnorm.Fold(s)]; found {
			return sex, 1.0, true
		}
	}
	// Inference: a layer line with no explicit sex implies female birds.
	if breed != "" && layerBreeds[breed] {
		return models.SexFemale, inferredConfidence, true
	}
	return "", 0, false
}

func (n *Normalizer) normalizeSymptoms(raw Raw) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range raw.strs("symptoms") {
		folded := textnorm.Fold(strings.TrimSpace(s))
		if folded == "" || seen[folded] {
			continue
		}
		seen[folded] = true
		out = append(out, folded)
	}
	return out
}

func (n *Normalizer) normalizeContextType(raw Raw, symptoms []string) (models.ContextType, float64, bool) {
	if s, ok := raw.str("context_type"); ok {
		switch models.ContextType(textnorm.Fold(s)) {
		case models.ContextPerformance:
			return models.ContextPerformance, 1.0, true
		case models.ContextNutrition:
			return models.ContextNutrition, 1.0, true
		case models.ContextHealth:
			return models.ContextHealth, 1.0, true
		case models.ContextHousing:
			return models.ContextHousing, 1.0, true
		}
	}
	// Inference: symptoms with no stated area means a health question.
	if len(symptoms) > 0 {
		return models.ContextHealth, inferredConfidence, true
	}
	return "", 0, false
}
