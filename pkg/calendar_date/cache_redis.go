package calendar_date

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisKeyPrefix = "nichecal:dates:"

// RedisResultStore shares cached fetch results between service instances.
// Redis failures degrade to cache misses.
type RedisResultStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisResultStore(client redis.UniversalClient, ttl time.Duration) *RedisResultStore {
	return &RedisResultStore{client: client, ttl: ttl}
}

func (s *RedisResultStore) Load(ctx context.Context, key string) ([]Entry, bool) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("redis cache read failed for %q: %v", key, err)
		}
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		log.Warnf("redis cache entry %q is corrupt: %v", key, err)
		return nil, false
	}
	return entries, true
}

func (s *RedisResultStore) Save(ctx context.Context, key string, entries []Entry) {
	payload, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("failed to encode cache entry %q: %v", key, err)
		return
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, payload, s.ttl).Err(); err != nil {
		log.Warnf("redis cache write failed for %q: %v", key, err)
	}
}
