package quota

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jjenkins/agencydash/internal/model"
)

const (
	redisKeyPrefix     = "agencydash:usage:"
	defaultMaxAttempts = 25

	// A record older than a day reads as zero usage, so keys can expire
	redisKeyTTL = 48 * time.Hour
)

// RedisStore keeps one hash per user. Updates use WATCH/MULTI so a concurrent
// write to the same key aborts the transaction and the update is retried.
type RedisStore struct {
	client      redis.UniversalClient
	maxAttempts int
}

// NewRedisStore creates a RedisStore over an existing client
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, maxAttempts: defaultMaxAttempts}
}

func (s *RedisStore) key(userID string) string {
	return redisKeyPrefix + userID
}

// Update implements Store
func (s *RedisStore) Update(ctx context.Context, userID string, now time.Time, fn UpdateFunc) (model.UsageRecord, error) {
	key := s.key(userID)

	var result model.UsageRecord
	txf := func(tx *redis.Tx) error {
		vals, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}

		rec, found, err := decodeUsage(userID, vals)
		if err != nil {
			return err
		}
		if !found {
			rec = model.UsageRecord{UserID: userID, LastViewedAt: now}
		}

		if changed := fn(&rec); changed || !found {
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key,
					"count", rec.Count,
					"last_viewed_at", rec.LastViewedAt.UnixNano(),
				)
				pipe.Expire(ctx, key, redisKeyTTL)
				return nil
			})
			if err != nil {
				return err
			}
		}

		result = rec
		return nil
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return model.UsageRecord{}, fmt.Errorf("failed to update usage for %s: %w", userID, err)
	}

	return model.UsageRecord{}, fmt.Errorf("failed to update usage for %s: gave up after %d conflicting attempts", userID, s.maxAttempts)
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, userID string) (*model.UsageRecord, error) {
	vals, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get usage for %s: %w", userID, err)
	}

	rec, found, err := decodeUsage(userID, vals)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

func decodeUsage(userID string, vals map[string]string) (model.UsageRecord, bool, error) {
	if len(vals) == 0 {
		return model.UsageRecord{}, false, nil
	}

	count, err := strconv.Atoi(vals["count"])
	if err != nil {
		return model.UsageRecord{}, false, fmt.Errorf("corrupt usage count for %s: %w", userID, err)
	}
	nanos, err := strconv.ParseInt(vals["last_viewed_at"], 10, 64)
	if err != nil {
		return model.UsageRecord{}, false, fmt.Errorf("corrupt usage timestamp for %s: %w", userID, err)
	}

	return model.UsageRecord{
		UserID:       userID,
		Count:        count,
		LastViewedAt: time.Unix(0, nanos),
	}, true, nil
}
