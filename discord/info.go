package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/goliatone/go-webhooks/cache"
	"github.com/goliatone/go-webhooks/core"
)

// BucketInfo is the rate limit bucket for reading webhook metadata.
const BucketInfo = "info"

// Info is the webhook object returned by GET /webhooks/{id}/{token}.
type Info struct {
	ID            string `json:"id"`
	Type          int    `json:"type"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	ChannelID     string `json:"channel_id"`
	GuildID       string `json:"guild_id"`
	ApplicationID string `json:"application_id"`
}

// InfoResolver reads webhook metadata and keeps it for the configured TTL.
type InfoResolver struct {
	deliverer core.Deliverer
	entries   *cache.Map[string, Info]
}

// NewInfoResolver caches results for ttl; ttl <= 0 keeps the cache default.
func NewInfoResolver(deliverer core.Deliverer, ttl time.Duration, opts ...cache.Option) *InfoResolver {
	if ttl > 0 {
		opts = append([]cache.Option{cache.WithDuration(ttl)}, opts...)
	}
	return &InfoResolver{
		deliverer: deliverer,
		entries:   cache.NewMap[string, Info](opts...),
	}
}

func (r *InfoResolver) Resolve(ctx context.Context, webhookURL string) (Info, error) {
	if r == nil || r.deliverer == nil {
		return Info{}, configError("discord: info resolver is not configured")
	}
	webhook, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return Info{}, err
	}
	return r.entries.GetOrLoad(ctx, infoKey(webhook), func(ctx context.Context, _ string) (Info, error) {
		return r.fetch(ctx, webhook)
	})
}

// Invalidate drops the cached entry for a webhook url. Unparseable urls are
// ignored.
func (r *InfoResolver) Invalidate(webhookURL string) {
	if r == nil {
		return
	}
	if webhook, err := ParseWebhookURL(webhookURL); err == nil {
		r.entries.Delete(infoKey(webhook))
	}
}

// infoKey includes the token so a revoked or different token never reads
// metadata cached for another one.
func infoKey(webhook WebhookURL) string {
	return webhook.ID + "/" + webhook.Token
}

func (r *InfoResolver) fetch(ctx context.Context, webhook WebhookURL) (Info, error) {
	res, err := r.deliverer.Deliver(ctx, core.DeliveryRequest{
		Method:   http.MethodGet,
		Endpoint: webhook.String(),
		RateLimitKey: core.RateLimitKey{
			Destination: webhook.Destination(),
			BucketKey:   BucketInfo,
		},
	})
	if err != nil {
		return Info{}, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Info{}, apiError(res, webhook)
	}
	var info Info
	if err := json.Unmarshal(res.Body, &info); err != nil {
		return Info{}, core.NewDeliveryError(err, "discord: decode webhook info", 0, map[string]any{
			"webhook_id": webhook.ID,
		})
	}
	return info, nil
}
