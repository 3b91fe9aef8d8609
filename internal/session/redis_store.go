package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions and comparison records in Redis with a TTL,
// for deployments where the API runs on more than one instance. Entries
// are still session-scoped: the TTL bounds their lifetime.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	cmpPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	TTL      time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}

	return &RedisStore{
		client:    client,
		prefix:    "fl:sess:",
		cmpPrefix: "fl:cmp:",
		ttl:       ttl,
	}, nil
}

// Get retrieves a session by ID.
func (r *RedisStore) Get(ctx context.Context, id string) (*DocumentSession, error) {
	val, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var s DocumentSession
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Save stores a session, resetting its TTL.
func (r *RedisStore) Save(ctx context.Context, s *DocumentSession) error {
	val, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+s.ID, val, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a session.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// GetComparison retrieves the comparison record for an ordered pair.
func (r *RedisStore) GetComparison(ctx context.Context, firstID, secondID string) (*ComparisonRecord, error) {
	val, err := r.client.Get(ctx, r.cmpPrefix+comparisonKey(firstID, secondID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec ComparisonRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("decode comparison: %w", err)
	}
	return &rec, nil
}

// SaveComparison stores a comparison record, resetting its TTL.
func (r *RedisStore) SaveComparison(ctx context.Context, rec *ComparisonRecord) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode comparison: %w", err)
	}
	key := r.cmpPrefix + comparisonKey(rec.FirstID, rec.SecondID)
	if err := r.client.Set(ctx, key, val, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
