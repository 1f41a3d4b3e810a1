// internal/perfstore/canonical.go

package perfstore

import (
	"strings"

	"livestock-advisor/internal/models"
	"livestock-advisor/internal/textnorm"
)

// CanonicalLine lowercases and strips punctuation/whitespace so that
// "Ross 308", "ross-308" and "ROSS308" all key the same dataset.
func CanonicalLine(line string) string {
	var b strings.Builder
	for _, r := range textnorm.Fold(line) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var sexAliases = map[string]models.Sex{
	"male": models.SexMale, "males": models.SexMale, "m": models.SexMale,
	"coq": models.SexMale, "coqs": models.SexMale,
	"female": models.SexFemale, "females": models.SexFemale, "f": models.SexFemale,
	"femelle": models.SexFemale, "femelles": models.SexFemale,
	"poule": models.SexFemale, "poules": models.SexFemale,
	"as_hatched": models.SexAsHatched, "as hatched": models.SexAsHatched,
	"ashatched": models.SexAsHatched, "straight run": models.SexAsHatched,
	"mixed": models.SexAsHatched, "mixte": models.SexAsHatched,
}

// CanonicalSex folds common synonyms into the three supported values.
// Unrecognized input maps to as_hatched, the least specific table.
func CanonicalSex(sex string) models.Sex {
	if s, ok := sexAliases[textnorm.Fold(strings.TrimSpace(sex))]; ok {
		return s
	}
	return models.SexAsHatched
}

var unitAliases = map[string]models.Unit{
	"metric": models.UnitMetric, "si": models.UnitMetric,
	"g": models.UnitMetric, "grams": models.UnitMetric, "kg": models.UnitMetric,
	"imperial": models.UnitImperial, "lb": models.UnitImperial,
	"lbs": models.UnitImperial, "pounds": models.UnitImperial,
}

// CanonicalUnit folds unit synonyms; unrecognized input defaults to metric.
func CanonicalUnit(unit string) models.Unit {
	if u, ok := unitAliases[textnorm.Fold(strings.TrimSpace(unit))]; ok {
		return u
	}
	return models.UnitMetric
}
