package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/packfinderz-backend/pkg/redis"
)

// ErrMiss is returned when the requested key is absent.
var ErrMiss = errors.New("cache miss")

// IsMiss reports whether err means an absent key rather than a dependency
// failure.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}

// Store is a read-through cache keyed by (entity, filter) with tag-based
// invalidation: every entry is registered under one or more tags, and
// Invalidate(tag) drops every entry the tag covers. Mutating endpoints
// invalidate the entity tag instead of tracking individual keys.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a cache store with the provided default TTL.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Key derives the cache key for an entity and filter.
func (s *Store) Key(entity, filter string) string {
	return s.client.CacheKey(entity, filter)
}

func (s *Store) tagKey(tag string) string {
	return s.client.CacheKey("tag", tag)
}

// Get unmarshals the cached value into dest, or returns ErrMiss.
func (s *Store) Get(ctx context.Context, entity, filter string, dest any) error {
	raw, err := s.client.Get(ctx, s.Key(entity, filter))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

// Set stores the value and registers the key under each tag.
func (s *Store) Set(ctx context.Context, entity, filter string, value any, tags ...string) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	key := s.Key(entity, filter)
	if err := s.client.Set(ctx, key, string(payload), s.ttl); err != nil {
		return err
	}
	for _, tag := range tags {
		if err := s.client.SAdd(ctx, s.tagKey(tag), key); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate drops every entry registered under the tag.
func (s *Store) Invalidate(ctx context.Context, tag string) error {
	tagKey := s.tagKey(tag)
	keys, err := s.client.SMembers(ctx, tagKey)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, tagKey)
}
