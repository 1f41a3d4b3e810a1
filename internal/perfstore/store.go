// internal/perfstore/store.go

// Package perfstore is the deterministic lookup engine over tabular
// performance reference data (target weight, daily gain, cumulative FCR per
// production line and age). Datasets are cached per line with a TTL and
// swapped atomically on reload, so readers never observe a partial load.
package perfstore

import (
	"context"
	"sync"
	"time"

	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/common/metrics"
	"livestock-advisor/internal/models"
)

// SourceReliability is the confidence weight attached to evidence from
// tabular reference data. Breeder tables are authoritative.
const SourceReliability = 0.95

type dataset struct {
	records  []models.PerfRecord
	loadedAt time.Time
}

type Store struct {
	loader DatasetLoader
	ttl    time.Duration
	logger logger.Logger

	mu    sync.RWMutex
	cache map[string]*dataset
	now   func() time.Time
}

func NewStore(loader DatasetLoader, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		loader: loader,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "perf-store"}),
		cache:  make(map[string]*dataset),
		now:    time.Now,
	}
}

// Lookup finds the reference row for (line, sex, unit, age_days). Match
// order: exact; then the as_hatched table when a sexed row is absent (mixed
// tables often substitute); then nearest age within the partition, ties going
// to the younger row. A nil record with nil error means no data.
func (s *Store) Lookup(ctx context.Context, line, sex, unit string, ageDays int) (*models.PerfRecord, error) {
	key := CanonicalLine(line)
	if key == "" || ageDays < 0 {
		metrics.PerfLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}
	wantSex := CanonicalSex(sex)
	wantUnit := CanonicalUnit(unit)

	records, err := s.dataset(ctx, key)
	if err != nil {
		metrics.PerfLookups.WithLabelValues("miss").Inc()
		return nil, err
	}

	if rec := exactMatch(records, wantSex, wantUnit, ageDays); rec != nil {
		metrics.PerfLookups.WithLabelValues("exact").Inc()
		return rec, nil
	}
	if wantSex != models.SexAsHatched {
		if rec := exactMatch(records, models.SexAsHatched, wantUnit, ageDays); rec != nil {
			metrics.PerfLookups.WithLabelValues("as_hatched").Inc()
			return rec, nil
		}
	}
	if rec := nearestAge(records, wantSex, wantUnit, ageDays); rec != nil {
		metrics.PerfLookups.WithLabelValues("nearest_age").Inc()
		return rec, nil
	}
	if wantSex != models.SexAsHatched {
		if rec := nearestAge(records, models.SexAsHatched, wantUnit, ageDays); rec != nil {
			metrics.PerfLookups.WithLabelValues("nearest_age").Inc()
			return rec, nil
		}
	}

	metrics.PerfLookups.WithLabelValues("miss").Inc()
	return nil, nil
}

// dataset returns the cached records for a line, reloading when the TTL has
// lapsed. The cache entry is replaced wholesale; concurrent readers keep the
// slice they already hold.
func (s *Store) dataset(ctx context.Context, key string) ([]models.PerfRecord, error) {
	s.mu.RLock()
	ds, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && s.now().Sub(ds.loadedAt) < s.ttl {
		metrics.PerfCacheHits.WithLabelValues("hit").Inc()
		return ds.records, nil
	}
	metrics.PerfCacheHits.WithLabelValues("miss").Inc()

	records, err := s.loader.LoadLine(ctx, key)
	if err != nil {
		s.logger.Error("dataset reload failed", map[string]interface{}{
			"line":  key,
			"error": err.Error(),
		})
		// Serve the stale dataset rather than nothing while the source is
		// unhealthy.
		if ok {
			return ds.records, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = &dataset{records: records, loadedAt: s.now()}
	s.mu.Unlock()

	s.logger.Info("dataset loaded", map[string]interface{}{
		"line": key,
		"rows": len(records),
	})
	return records, nil
}

func exactMatch(records []models.PerfRecord, sex models.Sex, unit models.Unit, ageDays int) *models.PerfRecord {
	for i := range records {
		r := &records[i]
		if r.Sex == sex && r.Unit == unit && r.AgeDays == ageDays {
			out := *r
			return &out
		}
	}
	return nil
}

func nearestAge(records []models.PerfRecord, sex models.Sex, unit models.Unit, ageDays int) *models.PerfRecord {
	var best *models.PerfRecord
	bestDelta := 0
	for i := range records {
		r := &records[i]
		if r.Sex != sex || r.Unit != unit {
			continue
		}
		delta := r.AgeDays - ageDays
		if delta < 0 {
			delta = -delta
		}
		better := best == nil ||
			delta < bestDelta ||
			(delta == bestDelta && r.AgeDays < best.AgeDays)
		if better {
			out := *r
			best = &out
			bestDelta = delta
		}
	}
	return best
}
