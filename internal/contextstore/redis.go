// internal/contextstore/redis.go

package contextstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"livestock-advisor/internal/models"
)

const sessionKeyPrefix = "session:"

// RedisRepository stores each session as a JSON blob under a TTL'd key.
// Expiry is delegated to Redis, so it implements no sweeper.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (r *RedisRepository) Get(ctx context.Context, sessionID string) (*models.ConversationContext, error) {
	raw, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	var cc models.ConversationContext
	if err := json.Unmarshal([]byte(raw), &cc); err != nil {
		// A corrupt blob is unrecoverable; drop it rather than poisoning
		// every subsequent turn of the session.
		_ = r.client.Del(ctx, sessionKey(sessionID)).Err()
		return nil, nil
	}
	return &cc, nil
}

func (r *RedisRepository) Put(ctx context.Context, cc *models.ConversationContext, ttl time.Duration) error {
	payload, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(cc.SessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
