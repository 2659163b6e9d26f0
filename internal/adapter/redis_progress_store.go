package adapter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/createdbyadham/Questionary/internal/config"
	"github.com/createdbyadham/Questionary/internal/domain"

	"github.com/redis/go-redis/v9"
)

const progressKeyPrefix = "questionary:progress:"

// RedisProgressStore implements domain.ProgressStore on Redis, for
// deployments where the poller and the pipeline run in different processes.
// Eviction is native: records carry the TTL, tightened to the grace period
// once a record is marked completed.
type RedisProgressStore struct {
	client         *redis.Client
	ttl            time.Duration
	completedGrace time.Duration

	// mu serializes read-merge-write updates. Same-session writers all live
	// in this process, so a process-local lock is sufficient.
	mu sync.Mutex
}

// NewRedisProgressStore creates a Redis-backed progress store.
// It expects a connected *redis.Client.
func NewRedisProgressStore(client *redis.Client, cfg config.ProgressConfig) *RedisProgressStore {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	grace := cfg.CompletedGrace
	if grace <= 0 {
		grace = 60 * time.Second
	}
	return &RedisProgressStore{
		client:         client,
		ttl:            ttl,
		completedGrace: grace,
	}
}

func progressKey(sessionID string) string {
	return progressKeyPrefix + sessionID
}

// Create registers a new record for the session, replacing any existing one.
func (s *RedisProgressStore) Create(ctx context.Context, sessionID string, rec domain.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.SessionID = sessionID
	rec.UpdatedAt = time.Now()
	return s.set(ctx, sessionID, &rec)
}

// Update shallow-merges the set fields into the stored record.
func (s *RedisProgressStore) Update(ctx context.Context, sessionID string, upd domain.ProgressUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.get(ctx, sessionID)
	if err != nil {
		return err
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
	return s.set(ctx, sessionID, rec)
}

// Get returns the current record for the session.
// It translates redis.Nil to domain.ErrProgressNotFound.
func (s *RedisProgressStore) Get(ctx context.Context, sessionID string) (*domain.ProgressRecord, error) {
	return s.get(ctx, sessionID)
}

func (s *RedisProgressStore) get(ctx context.Context, sessionID string) (*domain.ProgressRecord, error) {
	val, err := s.client.Get(ctx, progressKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrProgressNotFound
		}
		return nil, err
	}
	var rec domain.ProgressRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisProgressStore) set(ctx context.Context, sessionID string, rec *domain.ProgressRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	expiration := s.ttl
	if rec.Completed {
		expiration = s.completedGrace
	}
	return s.client.Set(ctx, progressKey(sessionID), string(data), expiration).Err()
}

var _ domain.ProgressStore = (*RedisProgressStore)(nil)
