// internal/retrieval/engine.go

package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	apperrors "livestock-advisor/internal/common/errors"
	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/common/metrics"
	"livestock-advisor/internal/models"
	"livestock-advisor/internal/textnorm"
)

// Re-ranking weights. The raw source score dominates, the rest are nudges.
const (
	rawScoreWeight      = 0.5
	indexPriorityWeight = 0.2
	tableKindBonus      = 0.15
	recencyBonus        = 0.05
	keywordBonus        = 0.1
	urgencyBonus        = 0.05
	genericPenalty      = 0.1

	// A later same-source hit of similar size replaces the kept one only
	// when it scores meaningfully higher.
	replaceMargin   = 0.1
	similarSizeBand = 0.1

	recencyWindowYears = 3
)

type Engine struct {
	sources       []Source
	topK          int
	sourceTimeout time.Duration
	logger        logger.Logger
	now           func() time.Time
}

func NewEngine(sources []Source, topK int, sourceTimeout time.Duration, log logger.Logger) *Engine {
	return &Engine{
		sources:       sources,
		topK:          topK,
		sourceTimeout: sourceTimeout,
		logger:        log.WithFields(map[string]interface{}{"component": "retrieval-engine"}),
		now:           time.Now,
	}
}

// Retrieve queries the selected sources in parallel, excludes the slow and
// failing ones, and returns the fused top-k. An empty result means no
// evidence was found; it is never an error.
func (e *Engine) Retrieve(ctx context.Context, question string, entities map[string]interface{}, cls models.Classification) []models.RetrievalHit {
	selected := selectSources(e.sources, cls.Domain, cls.Urgency == models.UrgencyUrgent)
	if len(selected) == 0 {
		return nil
	}
	filters := entityFilters(entities)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var gathered []models.RetrievalHit

	for _, sel := range selected {
		wg.Add(1)
		go func(sel selectedSource) {
			defer wg.Done()

			budget := int(float64(e.topK) * sel.priority)
			if budget < 1 {
				budget = 1
			}

			queryCtx, cancel := context.WithTimeout(ctx, e.sourceTimeout)
			defer cancel()

			hits, err := sel.source.Search(queryCtx, question, budget, filters)
			if err != nil {
				status := "error"
				if queryCtx.Err() == context.DeadlineExceeded {
					status = "timeout"
					err = apperrors.NewSourceTimeoutError(sel.source.ID())
				}
				metrics.SourceQueries.WithLabelValues(sel.source.ID(), status).Inc()
				fields := map[string]interface{}{
					"source": sel.source.ID(),
					"status": status,
					"error":  err.Error(),
				}
				var se *apperrors.StandardError
				if errors.As(err, &se) {
					fields["category"] = apperrors.GetErrorCategory(se.Code)
				}
				e.logger.Warn("source excluded from fusion", fields)
				return
			}
			metrics.SourceQueries.WithLabelValues(sel.source.ID(), "ok").Inc()

			for i := range hits {
				hits[i].SourceID = sel.source.ID()
				hits[i].Kind = sel.source.Kind()
				hits[i].IndexPriority = sel.priority
			}
			mu.Lock()
			gathered = append(gathered, hits...)
			mu.Unlock()
		}(sel)
	}
	wg.Wait()

	for i := range gathered {
		gathered[i].FinalScore = e.rerank(&gathered[i], entities, cls)
	}

	sort.SliceStable(gathered, func(i, j int) bool {
		return gathered[i].FinalScore > gathered[j].FinalScore
	})

	fused := dedupe(gathered)
	if len(fused) > e.topK {
		fused = fused[:e.topK]
	}

	e.logger.Debug("retrieval fused", map[string]interface{}{
		"gathered": len(gathered),
		"kept":     len(fused),
		"intent":   cls.IntentID,
	})
	return fused
}

// rerank scores one hit: weighted raw relevance and index priority, plus
// bonuses for preferred content kind, recency, entity-keyword overlap and
// urgency, minus a penalty for generic content. Clamped to [0,1].
func (e *Engine) rerank(hit *models.RetrievalHit, entities map[string]interface{}, cls models.Classification) float64 {
	score := rawScoreWeight*clamp01(hit.RawScore) + indexPriorityWeight*hit.IndexPriority

	if hit.Kind == models.SourceKindTable && (cls.Domain == "performance" || cls.Domain == "nutrition") {
		score += tableKindBonus
	}
	if year, ok := metadataYear(hit.Metadata); ok && e.now().Year()-year <= recencyWindowYears {
		score += recencyBonus
	}

	mentionsEntity := false
	if breed, ok := entities["breed"].(string); ok && breed != "" && textnorm.Contains(hit.Content, breed) {
		mentionsEntity = true
	}
	for _, signal := range cls.Evidence {
		if textnorm.Contains(hit.Content, signal) {
			mentionsEntity = true
			break
		}
	}
	if mentionsEntity {
		score += keywordBonus
	} else if hit.IndexPriority < 1.0 {
		// Generic content from a fallback source that never mentions the
		// question's subject is usually noise.
		score -= genericPenalty
	}

	if cls.Urgency == models.UrgencyUrgent && hit.IndexPriority >= 1.0 {
		score += urgencyBonus
	}

	return clamp01(score)
}

// dedupe walks hits best-first, dropping exact content duplicates and
// collapsing same-source hits of similar size. Input must be sorted by
// FinalScore descending; within the similar-size rule the later (lower
// scored) hit would need to beat the kept one by replaceMargin, which a
// sorted walk makes impossible, so it is simply dropped.
func dedupe(hits []models.RetrievalHit) []models.RetrievalHit {
	seen := make(map[string]bool, len(hits))
	var kept []models.RetrievalHit
	for _, hit := range hits {
		hash := contentHash(hit.Content)
		if seen[hash] {
			continue
		}
		if collapsed(kept, hit) {
			continue
		}
		seen[hash] = true
		kept = append(kept, hit)
	}
	return kept
}

func collapsed(kept []models.RetrievalHit, hit models.RetrievalHit) bool {
	for _, k := range kept {
		if k.SourceID != hit.SourceID {
			continue
		}
		if similarSize(len(k.Content), len(hit.Content)) && hit.FinalScore <= k.FinalScore+replaceMargin {
			return true
		}
	}
	return false
}

func similarSize(a, b int) bool {
	if a == 0 || b == 0 {
		return a == b
	}
	max := a
	if b > max {
		max = b
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)/float64(max) <= similarSizeBand
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(textnorm.Fold(content)))
	return hex.EncodeToString(sum[:])
}

// entityFilters projects the entity map onto the string filters sources
// understand.
func entityFilters(entities map[string]interface{}) map[string]string {
	filters := make(map[string]string)
	for _, key := range []string{"breed", "sex", "context_type"} {
		if v, ok := entities[key].(string); ok && v != "" {
			filters[key] = v
		}
	}
	switch v := entities["age_days"].(type) {
	case int:
		filters["age_days"] = strconv.Itoa(v)
	case int64:
		filters["age_days"] = strconv.FormatInt(v, 10)
	case float64:
		filters["age_days"] = strconv.Itoa(int(v))
	}
	return filters
}

func metadataYear(metadata map[string]interface{}) (int, bool) {
	switch v := metadata["year"].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		if year, err := strconv.Atoi(v); err == nil {
			return year, true
		}
	}
	return 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
