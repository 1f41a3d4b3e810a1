// internal/pipeline/resolver_test.go

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestock-advisor/internal/clarify"
	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/completeness"
	"livestock-advisor/internal/contextstore"
	"livestock-advisor/internal/entity"
	"livestock-advisor/internal/intent"
	"livestock-advisor/internal/models"
	"livestock-advisor/internal/perfstore"
	"livestock-advisor/internal/retrieval"
	"livestock-advisor/internal/strategy"
	"livestock-advisor/internal/synthesis"
	"livestock-advisor/pkg/registry"
)

var perfColumns = []string{"line", "sex", "unit", "age_days", "weight_g", "daily_gain_g", "fcr_cum", "source_doc", "page"}

func ross308Rows() *sqlmock.Rows {
	return sqlmock.NewRows(perfColumns).
		AddRow("ross308", "male", "metric", 14, 512.0, 45.2, 1.08, "ross308-perf-2022", 4).
		AddRow("ross308", "male", "metric", 21, 941.0, 61.3, 1.25, "ross308-perf-2022", 4).
		AddRow("ross308", "male", "metric", 28, 1480.0, 74.8, 1.39, "ross308-perf-2022", 5)
}

// newTestResolver assembles the full pipeline on in-process backends: an
// in-memory session store, a sqlmock-backed performance table, no document
// sources, and the rule-based synthesizer.
func newTestResolver(t *testing.T) (*Resolver, sqlmock.Sqlmock) {
	t.Helper()
	log := logger.NewTestLogger(t)
	reg := registry.Default()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	perf := perfstore.NewStore(perfstore.NewPostgresLoader(db, "perf_records"), time.Hour, log)
	engine := retrieval.NewEngine(
		[]retrieval.Source{retrieval.NewPerfTableSource(perf, "perf-tables")},
		8, 5*time.Second, log,
	)
	contexts := contextstore.New(contextstore.NewMemoryRepository(), 10*time.Minute, time.Minute, log)
	t.Cleanup(contexts.Close)

	resolver := NewResolver(Deps{
		Extractor:         entity.NewExtractor(),
		Normalizer:        entity.NewNormalizer(log),
		Classifier:        intent.NewClassifier(reg, log),
		Contexts:          contexts,
		Completeness:      completeness.NewEvaluator(reg),
		Selector:          strategy.NewSelector(reg),
		Clarifier:         clarify.NewGenerator(reg),
		Retrieval:         engine,
		Synthesizer:       synthesis.NewChain(nil, synthesis.NewRuleBasedSynthesizer(), log),
		Registry:          reg,
		Logger:            log,
		QuestionTimeout:   25 * time.Second,
		MaxClarifications: 3,
	})
	return resolver, mock
}

func TestResolve_CompleteQuestionAnswersFromTable(t *testing.T) {
	resolver, mock := newTestResolver(t)
	mock.ExpectQuery("FROM perf_records").WithArgs("ross308").WillReturnRows(ross308Rows())

	resp, err := resolver.Resolve(context.Background(), Question{
		SessionID: "farm-e2e-1",
		Text:      "poids Ross 308 mâle 21 jours",
	})

	require.NoError(t, err)
	assert.Equal(t, strategy.ActionAnswer, resp.Strategy)
	assert.Equal(t, "performance.weight_target", resp.IntentID)
	assert.Contains(t, resp.Answer, "941")
	require.NotEmpty(t, resp.Evidence)
	assert.Equal(t, models.SourceKindTable, resp.Evidence[0].Kind)
	assert.Contains(t,
		[]models.ConfidenceLevel{models.ConfidenceHigh, models.ConfidenceVeryHigh},
		resp.Confidence.Level,
	)
}

func TestResolve_BareQuestionClarifies(t *testing.T) {
	resolver, _ := newTestResolver(t)

	resp, err := resolver.Resolve(context.Background(), Question{
		SessionID: "farm-e2e-2",
		Text:      "poids?",
	})

	require.NoError(t, err)
	assert.Equal(t, strategy.ActionClarify, resp.Strategy)
	require.NotEmpty(t, resp.Clarifications)
	for _, q := range resp.Clarifications {
		assert.NotEmpty(t, q)
	}
	assert.Empty(t, resp.Answer)
}

func TestResolve_ClarificationAnswerContinuesTopic(t *testing.T) {
	resolver, mock := newTestResolver(t)
	mock.ExpectQuery("FROM perf_records").WithArgs("ross308").WillReturnRows(ross308Rows())

	first, err := resolver.Resolve(context.Background(), Question{
		SessionID: "farm-e2e-3",
		Text:      "quel est le poids cible",
	})
	require.NoError(t, err)
	require.Equal(t, strategy.ActionClarify, first.Strategy)

	// The reply carries only entities; the pending intent must stand.
	second, err := resolver.Resolve(context.Background(), Question{
		SessionID: "farm-e2e-3",
		Text:      "Ross 308 mâle de 21 jours",
	})
	require.NoError(t, err)

	assert.Equal(t, "performance.weight_target", second.IntentID)
	assert.Equal(t, strategy.ActionAnswer, second.Strategy)
	assert.Contains(t, second.Answer, "941")
}

func TestResolve_NeverClarifiesThreeTimesInARow(t *testing.T) {
	resolver, _ := newTestResolver(t)

	var strategies []strategy.Action
	for i := 0; i < 3; i++ {
		resp, err := resolver.Resolve(context.Background(), Question{
			SessionID: "farm-e2e-4",
			Text:      "poids?",
		})
		require.NoError(t, err)
		strategies = append(strategies, resp.Strategy)
	}

	assert.Equal(t, strategy.ActionClarify, strategies[0])
	assert.Equal(t, strategy.ActionClarify, strategies[1])
	assert.NotEqual(t, strategy.ActionClarify, strategies[2])
}

func TestResolve_NoEvidenceStillAnswersCoherently(t *testing.T) {
	resolver, mock := newTestResolver(t)
	mock.ExpectQuery("FROM perf_records").WithArgs("hubbardflex").
		WillReturnRows(sqlmock.NewRows(perfColumns))

	resp, err := resolver.Resolve(context.Background(), Question{
		SessionID: "farm-e2e-5",
		Text:      "poids Hubbard Flex femelle 21 jours",
	})

	require.NoError(t, err)
	assert.NotEqual(t, strategy.ActionClarify, resp.Strategy)
	assert.NotEmpty(t, resp.Answer)
	assert.NotEqual(t, models.ConfidenceVeryHigh, resp.Confidence.Level)
}

func TestResolve_EntitiesAccumulateAcrossTurns(t *testing.T) {
	resolver, mock := newTestResolver(t)
	mock.ExpectQuery("FROM perf_records").WithArgs("cobb500").
		WillReturnRows(sqlmock.NewRows(perfColumns).
			AddRow("cobb500", "as_hatched", "metric", 21, 880.0, 55.1, 1.27, "cobb500-supp", 3))

	_, err := resolver.Resolve(context.Background(), Question{
		SessionID: "farm-e2e-6",
		Text:      "mes poulettes cobb 500",
	})
	require.NoError(t, err)

	resp, err := resolver.Resolve(context.Background(), Question{
		SessionID: "farm-e2e-6",
		Text:      "quel poids à 21 jours ?",
	})
	require.NoError(t, err)

	assert.Equal(t, "Cobb 500", resp.Entities["breed"])
	if resp.Strategy != strategy.ActionClarify {
		assert.Contains(t, resp.Answer, "880")
	}
}
