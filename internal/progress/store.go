package progress

import (
	"context"
	"sync"
	"time"

	"github.com/createdbyadham/Questionary/internal/config"
	"github.com/createdbyadham/Questionary/internal/domain"
	"github.com/createdbyadham/Questionary/internal/logger"

	"go.uber.org/zap"
)

// MemoryStore is the default domain.ProgressStore: a process-wide map of
// session records behind a single mutex. Every mutation goes through the
// mutex, so concurrent writers to the same session serialize instead of
// losing fields.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*domain.ProgressRecord

	ttl            time.Duration
	completedGrace time.Duration
}

// NewMemoryStore creates an in-memory progress store with the configured
// eviction windows.
func NewMemoryStore(cfg config.ProgressConfig) *MemoryStore {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	grace := cfg.CompletedGrace
	if grace <= 0 {
		grace = 60 * time.Second
	}
	return &MemoryStore{
		records:        make(map[string]*domain.ProgressRecord),
		ttl:            ttl,
		completedGrace: grace,
	}
}

// Create registers a new record for the session, replacing any existing one.
func (s *MemoryStore) Create(ctx context.Context, sessionID string, rec domain.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.SessionID = sessionID
	rec.UpdatedAt = time.Now()
	s.records[sessionID] = &rec
	return nil
}

// Update shallow-merges the set fields into the session's record. Percent is
// clamped so it never decreases; the pipeline guarantees non-decreasing
// progress within a run and the store enforces it at the mutation point.
func (s *MemoryStore) Update(ctx context.Context, sessionID string, upd domain.ProgressUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[sessionID]
	if !ok {
		return domain.ErrProgressNotFound
	}
	if upd.Status != nil {
		rec.Status = *upd.Status
	}
	if upd.Message != nil {
		rec.Message = *upd.Message
	}
	if upd.Percent != nil && *upd.Percent > rec.Percent {
		rec.Percent = *upd.Percent
	}
	if upd.Completed != nil {
		rec.Completed = *upd.Completed
	}
	if upd.Error != nil {
		rec.Error = *upd.Error
	}
	rec.UpdatedAt = time.Now()
	return nil
}

// Get returns a copy of the current record for the session.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[sessionID]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	copied := *rec
	return &copied, nil
}

// Sweep removes records older than the TTL, plus completed records older
// than the grace period. It returns the number of evicted sessions.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	evicted := 0
	for id, rec := range s.records {
		expired := now.Sub(rec.UpdatedAt) > s.ttl ||
			(rec.Completed && now.Sub(rec.UpdatedAt) > s.completedGrace)
		if expired {
			delete(s.records, id)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs Sweep on the given interval until ctx is canceled.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					logger.Get().Debug("Swept expired progress sessions", zap.Int("evicted", n))
				}
			}
		}
	}()
}

var _ domain.ProgressStore = (*MemoryStore)(nil)
