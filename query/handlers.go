package query

import (
	"context"
	"errors"

	"github.com/goliatone/go-webhooks/core"
	"github.com/goliatone/go-webhooks/discord"
	"github.com/goliatone/go-webhooks/ratelimit"
)

type InfoResolver interface {
	Resolve(ctx context.Context, webhookURL string) (discord.Info, error)
}

type ResolveDiscordInfoQuery struct {
	resolver InfoResolver
}

func NewResolveDiscordInfoQuery(resolver InfoResolver) *ResolveDiscordInfoQuery {
	return &ResolveDiscordInfoQuery{resolver: resolver}
}

func (q *ResolveDiscordInfoQuery) Query(ctx context.Context, msg ResolveDiscordInfoMessage) (discord.Info, error) {
	if q == nil || q.resolver == nil {
		return discord.Info{}, queryDependencyError("query: discord info resolver is required")
	}
	return q.resolver.Resolve(ctx, msg.WebhookURL)
}

type LoadRateLimitStateQuery struct {
	store ratelimit.StateStore
}

func NewLoadRateLimitStateQuery(store ratelimit.StateStore) *LoadRateLimitStateQuery {
	return &LoadRateLimitStateQuery{store: store}
}

func (q *LoadRateLimitStateQuery) Query(ctx context.Context, msg LoadRateLimitStateMessage) (ratelimit.State, error) {
	if q == nil || q.store == nil {
		return ratelimit.State{}, queryDependencyError("query: rate limit state store is required")
	}
	key := core.RateLimitKey{Destination: msg.Destination, BucketKey: msg.BucketKey}
	state, err := q.store.Get(ctx, key)
	if errors.Is(err, ratelimit.ErrStateNotFound) {
		return ratelimit.State{}, queryNotFoundError("query: rate limit state not found", map[string]any{
			"destination": msg.Destination,
			"bucket_key":  msg.BucketKey,
		})
	}
	return state, err
}
