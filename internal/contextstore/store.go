// internal/contextstore/store.go

// Package contextstore holds the per-session conversation state: merged
// entities, recent turns, last intent and the clarification round counter.
// State expires after an inactivity window and is reaped in the background.
package contextstore

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	apperrors "livestock-advisor/internal/common/errors"
	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/models"
)

const lockStripes = 64

// Repository is the session persistence interface. Implementations must be
// idempotent; Get returns (nil, nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, sessionID string) (*models.ConversationContext, error)
	Put(ctx context.Context, cc *models.ConversationContext, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// Reaper is implemented by repositories that need an explicit background
// sweep (the Redis repository relies on key TTLs instead).
type Reaper interface {
	ReapExpired(ctx context.Context, now time.Time) (int, error)
}

// Update carries one turn's changes to a session.
type Update struct {
	Entities         map[string]interface{}
	Turn             *models.Turn
	Intent           string
	IntentConfidence float64

	// ClarificationAsked increments the round counter; TopicResolved resets
	// it (a new topic or a delivered answer ends the unresolved streak).
	ClarificationAsked bool
	TopicResolved      bool
}

// Store wraps a Repository with staleness checks, monotonic entity merging
// and per-session locking so concurrent turns never lose updates.
type Store struct {
	repo   Repository
	ttl    time.Duration
	logger logger.Logger

	locks [lockStripes]sync.Mutex

	sweepEvery time.Duration
	stopSweep  chan struct{}
	sweepOnce  sync.Once
}

func New(repo Repository, ttl, sweepEvery time.Duration, log logger.Logger) *Store {
	return &Store{
		repo:       repo,
		ttl:        ttl,
		sweepEvery: sweepEvery,
		logger:     log.WithFields(map[string]interface{}{"component": "context-store"}),
		stopSweep:  make(chan struct{}),
	}
}

func (s *Store) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

// Get returns the session context, or a fresh empty one when the session is
// absent, expired, or the persistence layer is unavailable. It never fails:
// a broken store means the caller proceeds with no prior context.
func (s *Store) Get(ctx context.Context, sessionID string) *models.ConversationContext {
	cc, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("session read failed, treating session as fresh", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return models.NewConversationContext(sessionID)
	}
	if cc == nil || cc.IsStale(s.ttl, time.Now().UTC()) {
		return models.NewConversationContext(sessionID)
	}
	return cc
}

// Apply merges an update into the session under the per-session lock and
// persists the result. Entity merging is monotonic: a nil or empty new value
// never erases a stored one. Returns false when persistence failed; the
// in-flight request still proceeds with the merged value.
func (s *Store) Apply(ctx context.Context, sessionID string, u Update) (*models.ConversationContext, bool) {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	cc := s.Get(ctx, sessionID)

	if len(u.Entities) > 0 {
		cc.Entities = models.MergeEntityFields(cc.Entities, u.Entities)
	}
	if u.Turn != nil {
		cc.AppendTurn(*u.Turn)
	}
	if u.Intent != "" {
		// A topic switch resets the unresolved-clarification streak.
		if cc.LastIntent != "" && cc.LastIntent != u.Intent {
			cc.ClarificationRound = 0
		}
		cc.LastIntent = u.Intent
		cc.IntentConfidence = u.IntentConfidence
	}
	if u.TopicResolved {
		cc.ClarificationRound = 0
	} else if u.ClarificationAsked {
		cc.ClarificationRound++
	}
	cc.LastInteractionAt = time.Now().UTC()

	if err := s.repo.Put(ctx, cc, s.ttl); err != nil {
		s.logger.Warn("session write failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     apperrors.NewSessionStoreUnavailableError(err).Error(),
		})
		return cc, false
	}
	return cc, true
}

// Clear removes a session outright.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()
	return s.repo.Delete(ctx, sessionID)
}

// StartSweeper launches the periodic reaper when the repository needs one.
// Sweep failures are logged and retried on the next interval, never fatal.
func (s *Store) StartSweeper() {
	reaper, ok := s.repo.(Reaper)
	if !ok {
		return
	}
	go func() {
		ticker := time.NewTicker(s.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				reaped, err := reaper.ReapExpired(ctx, time.Now().UTC())
				cancel()
				if err != nil {
					s.logger.Warn("session sweep failed, will retry", map[string]interface{}{
						"error": err.Error(),
					})
					continue
				}
				if reaped > 0 {
					s.logger.Debug("session sweep done", map[string]interface{}{"reaped": reaped})
				}
			case <-s.stopSweep:
				return
			}
		}
	}()
}

// Close stops the background sweeper.
func (s *Store) Close() {
	s.sweepOnce.Do(func() { close(s.stopSweep) })
}
