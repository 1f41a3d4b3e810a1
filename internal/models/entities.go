// internal/models/entities.go
package models

// Sex is the canonical sex vocabulary used across the pipeline.
type Sex string

const (
	SexMale      Sex = "male"
	SexFemale    Sex = "female"
	SexAsHatched Sex = "as_hatched"
)

// ContextType classifies which advisory area a question belongs to.
type ContextType string

const (
	ContextPerformance ContextType = "performance"
	ContextNutrition   ContextType = "nutrition"
	ContextHealth      ContextType = "health"
	ContextHousing     ContextType = "housing"
)

// NormalizedEntities carries one turn's canonical extracted facts.
// Age and weight are stored in a single internal unit (days, grams);
// unit conversion happens once at normalization time, never downstream.
type NormalizedEntities struct {
	Breed       string      `json:"breed,omitempty"`
	AgeDays     *int        `json:"ageDays,omitempty"`
	AgeWeeks    *int        `json:"ageWeeks,omitempty"`
	Sex         Sex         `json:"sex,omitempty"`
	WeightGrams *float64    `json:"weightGrams,omitempty"`
	Symptoms    []string    `json:"symptoms,omitempty"`
	ContextType ContextType `json:"contextType,omitempty"`

	// NormalizationConfidence is the average per-field confidence:
	// 1.0 for directly provided fields, lower for inferred ones.
	NormalizationConfidence float64 `json:"normalizationConfidence"`
}

// ToFieldMap flattens the entities into the field-name -> value map used
// by completeness scoring and context merging. Absent fields are omitted.
func (e NormalizedEntities) ToFieldMap() map[string]interface{} {
	fields := make(map[string]interface{})
	if e.Breed != "" {
		fields["breed"] = e.Breed
	}
	if e.AgeDays != nil {
		fields["age_days"] = *e.AgeDays
	}
	if e.AgeWeeks != nil {
		fields["age_weeks"] = *e.AgeWeeks
	}
	if e.Sex != "" {
		fields["sex"] = string(e.Sex)
	}
	if e.WeightGrams != nil {
		fields["weight_grams"] = *e.WeightGrams
	}
	if len(e.Symptoms) > 0 {
		fields["symptoms"] = e.Symptoms
	}
	if e.ContextType != "" {
		fields["context_type"] = string(e.ContextType)
	}
	return fields
}

// MergeEntityFields merges the current turn's fields into the stored ones.
// A new non-nil value always overrides the stored one; a missing or nil new
// value never erases a previously stored value. Returns a fresh map.
func MergeEntityFields(stored, current map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(stored)+len(current))
	for k, v := range stored {
		merged[k] = v
	}
	for k, v := range current {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		merged[k] = v
	}
	return merged
}
