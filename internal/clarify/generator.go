// internal/clarify/generator.go

// Package clarify phrases follow-up questions for the context fields still
// missing. Producers mostly write in French, so the templates do too.
package clarify

import (
	"fmt"

	"livestock-advisor/internal/models"
	"livestock-advisor/pkg/registry"
)

const defaultMaxQuestions = 3

// openTemplates are the per-field open-ended phrasings used for normal
// intents.
var openTemplates = map[string]string{
	"breed":        "Quelle souche élevez-vous (par exemple Ross 308, Cobb 500) ?",
	"age_days":     "Quel est l'âge du lot, en jours ou en semaines ?",
	"sex":          "S'agit-il de mâles, de femelles, ou d'un lot mixte ?",
	"weight_grams": "Quel est le poids moyen actuel du lot ?",
	"symptoms":     "Quels signes observez-vous (abattement, boiterie, diarrhée, plumage...) ?",
	"context_type": "Votre question porte-t-elle sur la performance, l'alimentation, la santé ou le bâtiment ?",
}

// closedTemplates are the multiple-choice phrasings preferred for urgent
// intents, where a fast exact answer matters more than nuance.
var closedTemplates = map[string]string{
	"breed":    "Souche : Ross 308, Cobb 500, ou autre ?",
	"age_days": "Âge du lot : moins de 7 jours, 7-21 jours, ou plus de 21 jours ?",
	"sex":      "Sexe : mâles, femelles, ou mixte ?",
	"symptoms": "Signes principaux : mortalité, boiterie, diarrhée, abattement, ou autre ?",
}

type Generator struct {
	registry *registry.IntentRegistry
}

func NewGenerator(reg *registry.IntentRegistry) *Generator {
	return &Generator{registry: reg}
}

// Generate returns up to maxQuestions follow-ups for the missing fields,
// in the order given (callers pass them most-critical-first). Urgent intents
// are limited to the two most critical fields with closed-form phrasing.
// The result is never empty when missingFields is non-empty.
func (g *Generator) Generate(missingFields []string, intentID string, urgency models.UrgencyClass, maxQuestions int) []string {
	if len(missingFields) == 0 {
		return nil
	}
	if maxQuestions <= 0 {
		maxQuestions = defaultMaxQuestions
	}

	templates := openTemplates
	if urgency == models.UrgencyUrgent {
		templates = closedTemplates
		if maxQuestions > 2 {
			maxQuestions = 2
		}
		missingFields = g.mostCriticalFirst(missingFields, intentID)
	}

	var questions []string
	for _, field := range missingFields {
		if len(questions) >= maxQuestions {
			break
		}
		q, ok := templates[field]
		if !ok {
			// A field may have only an open template, or none at all.
			if q, ok = openTemplates[field]; !ok {
				q = fmt.Sprintf("Pouvez-vous préciser : %s ?", field)
			}
		}
		questions = append(questions, q)
	}
	return questions
}

// mostCriticalFirst reorders so the intent's critical fields lead; the input
// order is preserved within each group.
func (g *Generator) mostCriticalFirst(fields []string, intentID string) []string {
	def := g.registry.Get(intentID)
	if def == nil {
		return fields
	}
	ordered := make([]string, 0, len(fields))
	for _, f := range fields {
		if def.IsCritical(f) {
			ordered = append(ordered, f)
		}
	}
	for _, f := range fields {
		if !def.IsCritical(f) {
			ordered = append(ordered, f)
		}
	}
	return ordered
}
