package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-webhooks/core"
)

const stateCacheKeyPrefix = "go-webhooks::ratelimit_state::v1"

// CachedStateStore fronts a StateStore with a read-through cache. Writes go
// to the base store and invalidate the cached entry.
type CachedStateStore struct {
	base  StateStore
	cache repositorycache.CacheService
}

func NewCachedStateStore(base StateStore, cacheService repositorycache.CacheService) (*CachedStateStore, error) {
	if base == nil {
		return nil, fmt.Errorf("ratelimit: base state store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("ratelimit: cache service is required")
	}
	return &CachedStateStore{base: base, cache: cacheService}, nil
}

// NewCachedMemoryStateStore builds an in-memory base store behind a cache
// service whose entries expire after ttl.
func NewCachedMemoryStateStore(ttl time.Duration) (*CachedStateStore, error) {
	config := repositorycache.DefaultConfig()
	if ttl > 0 {
		config.TTL = ttl
	}
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		return nil, err
	}
	return NewCachedStateStore(NewMemoryStateStore(), service)
}

// StateCacheKey returns go-webhooks::ratelimit_state::v1::<destination>::<bucket>
// with each segment path escaped after normalization.
func StateCacheKey(key core.RateLimitKey) (string, error) {
	normalized := normalizeKey(key)
	if normalized.Destination == "" || normalized.BucketKey == "" {
		return "", fmt.Errorf("ratelimit: destination and bucket key are required")
	}
	segments := []string{
		stateCacheKeyPrefix,
		url.PathEscape(normalized.Destination),
		url.PathEscape(normalized.BucketKey),
	}
	return strings.Join(segments, "::"), nil
}

func (s *CachedStateStore) Get(ctx context.Context, key core.RateLimitKey) (State, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return State{}, fmt.Errorf("ratelimit: cached state store is not configured")
	}
	normalized := normalizeKey(key)
	cacheKey, err := StateCacheKey(normalized)
	if err != nil {
		return State{}, err
	}

	state, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (State, error) {
		fetched, fetchErr := s.base.Get(ctx, normalized)
		if fetchErr != nil {
			return State{}, fetchErr
		}
		return cloneState(fetched), nil
	})
	if err != nil {
		return State{}, err
	}
	return cloneState(state), nil
}

func (s *CachedStateStore) Upsert(ctx context.Context, state State) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("ratelimit: cached state store is not configured")
	}
	state = cloneState(state)
	cacheKey, err := StateCacheKey(state.Key)
	if err != nil {
		return err
	}
	if err := s.base.Upsert(ctx, state); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func cloneState(state State) State {
	cloned := state
	cloned.Key = normalizeKey(state.Key)
	cloned.Metadata = cloneMap(state.Metadata)
	if state.ResetAt != nil {
		value := state.ResetAt.UTC()
		cloned.ResetAt = &value
	}
	if state.ThrottledUntil != nil {
		value := state.ThrottledUntil.UTC()
		cloned.ThrottledUntil = &value
	}
	if state.RetryAfter != nil {
		value := *state.RetryAfter
		cloned.RetryAfter = &value
	}
	return cloned
}

var _ StateStore = (*CachedStateStore)(nil)
