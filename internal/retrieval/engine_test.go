// internal/retrieval/engine_test.go

package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/models"
)

type fakeSource struct {
	id     string
	kind   models.SourceKind
	domain string
	hits   []models.RetrievalHit
	err    error
	delay  time.Duration

	queried bool
}

func (f *fakeSource) ID() string              { return f.id }
func (f *fakeSource) Kind() models.SourceKind { return f.kind }
func (f *fakeSource) Domain() string          { return f.domain }

func (f *fakeSource) Search(ctx context.Context, _ string, budget int, _ map[string]string) ([]models.RetrievalHit, error) {
	f.queried = true
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > budget {
		return f.hits[:budget], nil
	}
	return f.hits, nil
}

func narrativeHit(content string, score float64) models.RetrievalHit {
	return models.RetrievalHit{Content: content, RawScore: score}
}

func performanceClassification() models.Classification {
	return models.Classification{
		IntentID: "performance.weight_target",
		Domain:   "performance",
		Urgency:  models.UrgencyNormal,
		Evidence: []string{"poids"},
	}
}

func newEngine(t *testing.T, topK int, timeout time.Duration, sources ...Source) *Engine {
	t.Helper()
	return NewEngine(sources, topK, timeout, logger.NewTestLogger(t))
}

func TestRetrieve_DeduplicatesIdenticalContentAcrossSources(t *testing.T) {
	shared := "Le poids cible Ross 308 mâle à 21 jours est de 941 g."
	a := &fakeSource{id: "guides", kind: models.SourceKindNarrative, domain: "performance",
		hits: []models.RetrievalHit{narrativeHit(shared, 0.9)}}
	b := &fakeSource{id: "kb", kind: models.SourceKindNarrative,
		hits: []models.RetrievalHit{narrativeHit(shared, 0.7)}}

	e := newEngine(t, 8, time.Second, a, b)
	hits := e.Retrieve(context.Background(), "poids ross 308", nil, performanceClassification())

	require.Len(t, hits, 1)
	assert.Equal(t, "guides", hits[0].SourceID)
}

func TestRetrieve_SlowSourceIsExcludedNotFatal(t *testing.T) {
	fast := &fakeSource{id: "fast", kind: models.SourceKindNarrative, domain: "performance",
		hits: []models.RetrievalHit{narrativeHit("poids cible 941 g", 0.8)}}
	slow := &fakeSource{id: "slow", kind: models.SourceKindNarrative, delay: 500 * time.Millisecond,
		hits: []models.RetrievalHit{narrativeHit("never arrives", 0.9)}}

	e := newEngine(t, 8, 50*time.Millisecond, fast, slow)
	hits := e.Retrieve(context.Background(), "poids", nil, performanceClassification())

	require.Len(t, hits, 1)
	assert.Equal(t, "fast", hits[0].SourceID)
}

func TestRetrieve_FailingSourceIsIsolated(t *testing.T) {
	healthy := &fakeSource{id: "healthy", kind: models.SourceKindNarrative, domain: "performance",
		hits: []models.RetrievalHit{narrativeHit("poids cible", 0.8)}}
	broken := &fakeSource{id: "broken", kind: models.SourceKindNarrative, err: errors.New("cluster down")}

	e := newEngine(t, 8, time.Second, healthy, broken)
	hits := e.Retrieve(context.Background(), "poids", nil, performanceClassification())

	require.Len(t, hits, 1)
	assert.Equal(t, "healthy", hits[0].SourceID)
}

func TestRetrieve_TableContentPreferredForPerformanceIntent(t *testing.T) {
	table := &fakeSource{id: "perf-tables", kind: models.SourceKindTable, domain: "performance",
		hits: []models.RetrievalHit{{Content: "Ross 308 mâle à 21 jours : poids cible 941 g", RawScore: 0.7}}}
	docs := &fakeSource{id: "guides", kind: models.SourceKindNarrative, domain: "performance",
		hits: []models.RetrievalHit{narrativeHit("Conseils généraux sur le poids des poulets de chair", 0.7)}}

	e := newEngine(t, 8, time.Second, table, docs)
	hits := e.Retrieve(context.Background(), "poids ross 308", nil, performanceClassification())

	require.Len(t, hits, 2)
	assert.Equal(t, "perf-tables", hits[0].SourceID)
	assert.Greater(t, hits[0].FinalScore, hits[1].FinalScore)
}

func TestRetrieve_UrgentIntentSkipsOffDomainSources(t *testing.T) {
	health := &fakeSource{id: "vet", kind: models.SourceKindNarrative, domain: "health",
		hits: []models.RetrievalHit{narrativeHit("mortalité subite: causes possibles", 0.8)}}
	housing := &fakeSource{id: "housing", kind: models.SourceKindNarrative, domain: "housing",
		hits: []models.RetrievalHit{narrativeHit("réglage de la ventilation", 0.8)}}
	general := &fakeSource{id: "kb", kind: models.SourceKindNarrative,
		hits: []models.RetrievalHit{narrativeHit("guide général mortalité", 0.6)}}

	cls := models.Classification{
		IntentID: "health.mortality",
		Domain:   "health",
		Urgency:  models.UrgencyUrgent,
		Evidence: []string{"mortalite"},
	}
	e := newEngine(t, 8, time.Second, health, housing, general)
	e.Retrieve(context.Background(), "mortalité élevée", nil, cls)

	assert.True(t, health.queried)
	assert.True(t, general.queried)
	assert.False(t, housing.queried)
}

func TestRetrieve_TruncatesToTopK(t *testing.T) {
	var many []models.RetrievalHit
	for i := 0; i < 10; i++ {
		// Varied lengths so the same-source collapse does not kick in.
		content := fmt.Sprintf("document poids numéro %d %s", i, strings.Repeat("détail ", i*3))
		many = append(many, narrativeHit(content, 0.5+float64(i)*0.04))
	}
	src := &fakeSource{id: "guides", kind: models.SourceKindNarrative, domain: "performance", hits: many}

	e := newEngine(t, 3, time.Second, src)
	hits := e.Retrieve(context.Background(), "poids", nil, performanceClassification())

	assert.LessOrEqual(t, len(hits), 3)
}

func TestRetrieve_AllSourcesEmptyIsEmptyNotError(t *testing.T) {
	empty := &fakeSource{id: "guides", kind: models.SourceKindNarrative, domain: "performance"}

	e := newEngine(t, 8, time.Second, empty)
	hits := e.Retrieve(context.Background(), "poids", nil, performanceClassification())

	assert.Empty(t, hits)
}

func TestRerank_ClampedToUnitInterval(t *testing.T) {
	e := newEngine(t, 8, time.Second)
	cls := performanceClassification()
	cls.Urgency = models.UrgencyUrgent

	hit := models.RetrievalHit{
		Content:       "poids cible Ross 308",
		RawScore:      5.0, // unnormalized upstream score
		Kind:          models.SourceKindTable,
		IndexPriority: 1.0,
		Metadata:      map[string]interface{}{"year": time.Now().Year()},
	}
	score := e.rerank(&hit, map[string]interface{}{"breed": "Ross 308"}, cls)

	assert.LessOrEqual(t, score, 1.0)
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestEntityFilters(t *testing.T) {
	filters := entityFilters(map[string]interface{}{
		"breed":    "Ross 308",
		"age_days": 21,
		"sex":      "male",
		"symptoms": []string{"boiterie"},
	})

	assert.Equal(t, "Ross 308", filters["breed"])
	assert.Equal(t, "21", filters["age_days"])
	assert.Equal(t, "male", filters["sex"])
	assert.NotContains(t, filters, "symptoms")
}
