// internal/synthesis/synthesis_test.go

package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/models"
)

func tableHit() models.RetrievalHit {
	return models.RetrievalHit{
		SourceID: "perf-tables",
		Kind:     models.SourceKindTable,
		Content:  "Ross 308 mâle à 21 jours : poids cible 941 g, gain moyen quotidien 61.3 g/j, indice de consommation cumulé 1.25 (source ross308-perf-2022 p.4)",
	}
}

func TestRuleBased_LeadsWithTableEvidence(t *testing.T) {
	s := NewRuleBasedSynthesizer()

	text, err := s.Synthesize(context.Background(), Request{
		Question: "poids Ross 308 mâle 21 jours",
		Evidence: []models.RetrievalHit{
			{SourceID: "guides", Kind: models.SourceKindNarrative, Content: "Surveiller l'homogénéité du lot."},
			tableHit(),
		},
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Référence :"))
	assert.Contains(t, text, "941 g")
	assert.Contains(t, text, "homogénéité")
}

func TestRuleBased_NoEvidenceStillAnswers(t *testing.T) {
	s := NewRuleBasedSynthesizer()

	text, err := s.Synthesize(context.Background(), Request{Question: "question sans réponse"})

	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Contains(t, text, "pas trouvé de référence")
}

func TestRuleBased_HedgedAnswerCarriesCaveat(t *testing.T) {
	s := NewRuleBasedSynthesizer()

	text, err := s.Synthesize(context.Background(), Request{
		Question: "poids à 3 semaines",
		Evidence: []models.RetrievalHit{tableHit()},
		Hedged:   true,
	})

	require.NoError(t, err)
	assert.Contains(t, text, "À confirmer")
}

func TestRuleBased_QuotesAtMostThreePassages(t *testing.T) {
	s := NewRuleBasedSynthesizer()

	var evidence []models.RetrievalHit
	for i := 0; i < 6; i++ {
		evidence = append(evidence, models.RetrievalHit{
			Kind:    models.SourceKindNarrative,
			Content: "passage " + string(rune('a'+i)),
		})
	}
	text, err := s.Synthesize(context.Background(), Request{Evidence: evidence})

	require.NoError(t, err)
	assert.Equal(t, maxQuotedPassages, strings.Count(text, "\n- "))
}

type stubSynthesizer struct {
	text string
	err  error
}

func (s *stubSynthesizer) Name() string { return "stub" }
func (s *stubSynthesizer) Synthesize(context.Context, Request) (string, error) {
	return s.text, s.err
}

func TestChain_PrimaryAnswerIsNotFallback(t *testing.T) {
	chain := NewChain(&stubSynthesizer{text: "réponse du service"}, NewRuleBasedSynthesizer(), logger.NewTestLogger(t))

	res, err := chain.Synthesize(context.Background(), Request{Question: "q"})

	require.NoError(t, err)
	assert.Equal(t, "réponse du service", res.Text)
	assert.False(t, res.Fallback)
}

func TestChain_PrimaryFailureFallsBack(t *testing.T) {
	chain := NewChain(&stubSynthesizer{err: errors.New("timeout")}, NewRuleBasedSynthesizer(), logger.NewTestLogger(t))

	res, err := chain.Synthesize(context.Background(), Request{
		Question: "poids Ross 308",
		Evidence: []models.RetrievalHit{tableHit()},
	})

	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Contains(t, res.Text, "941 g")
}

func TestChain_NoPrimaryUsesFallbackWithoutPenalty(t *testing.T) {
	chain := NewChain(nil, NewRuleBasedSynthesizer(), logger.NewTestLogger(t))

	res, err := chain.Synthesize(context.Background(), Request{
		Evidence: []models.RetrievalHit{tableHit()},
	})

	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.NotEmpty(t, res.Text)
}

func TestBuildPrompt_IncludesEvidenceAndContext(t *testing.T) {
	prompt := buildPrompt(Request{
		Question: "poids cible ?",
		Entities: map[string]interface{}{"breed": "Ross 308", "age_days": 21},
		Evidence: []models.RetrievalHit{tableHit()},
	})

	assert.Contains(t, prompt, "poids cible ?")
	assert.Contains(t, prompt, "Ross 308")
	assert.Contains(t, prompt, "[1]")
}
