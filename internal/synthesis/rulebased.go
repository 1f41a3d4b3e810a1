// internal/synthesis/rulebased.go

package synthesis

import (
	"context"
	"fmt"
	"strings"

	"livestock-advisor/internal/models"
)

const maxQuotedPassages = 3

// RuleBasedSynthesizer formats evidence into a deterministic French answer.
// It is the whole answering path when no completion service is configured
// and the fallback when the service fails. It never returns an error.
type RuleBasedSynthesizer struct{}

func NewRuleBasedSynthesizer() *RuleBasedSynthesizer { return &RuleBasedSynthesizer{} }

func (s *RuleBasedSynthesizer) Name() string { return "rule-based" }

func (s *RuleBasedSynthesizer) Synthesize(_ context.Context, req Request) (string, error) {
	var b strings.Builder

	table, narratives := splitEvidence(req.Evidence)
	if table != nil {
		fmt.Fprintf(&b, "Référence : %s\n", table.Content)
	}

	if len(narratives) > 0 {
		if table != nil {
			b.WriteString("Éléments complémentaires :\n")
		} else {
			b.WriteString("D'après les références disponibles :\n")
		}
		for i, hit := range narratives {
			if i >= maxQuotedPassages {
				break
			}
			fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(hit.Content))
		}
	}

	if table == nil && len(narratives) == 0 {
		b.WriteString("Je n'ai pas trouvé de référence précise pour cette question. ")
		b.WriteString("En règle générale, vérifiez la souche, l'âge du lot et les conditions d'ambiance, ")
		b.WriteString("et rapprochez-vous de votre technicien d'élevage si le problème persiste.\n")
	}

	if req.Hedged {
		b.WriteString("À confirmer : certaines informations manquent, la réponse reste indicative. ")
		b.WriteString("Précisez la souche, l'âge exact et le sexe du lot pour une valeur de référence exacte.\n")
	}

	return strings.TrimSpace(b.String()), nil
}

// splitEvidence pulls the best table row out; tables lead the answer, the
// narrative passages back it up.
func splitEvidence(evidence []models.RetrievalHit) (*models.RetrievalHit, []models.RetrievalHit) {
	var table *models.RetrievalHit
	var narratives []models.RetrievalHit
	for i := range evidence {
		hit := evidence[i]
		if hit.Kind == models.SourceKindTable && table == nil {
			table = &hit
			continue
		}
		narratives = append(narratives, hit)
	}
	return table, narratives
}
