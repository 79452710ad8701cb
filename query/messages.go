package query

import (
	"strings"

	"github.com/goliatone/go-webhooks/discord"
)

const (
	TypeResolveDiscordInfo = "webhooks.query.discord.info"
	TypeLoadRateLimitState = "webhooks.query.rate_limit.state"
)

type ResolveDiscordInfoMessage struct {
	WebhookURL string
}

func (ResolveDiscordInfoMessage) Type() string { return TypeResolveDiscordInfo }

func (m ResolveDiscordInfoMessage) Validate() error {
	_, err := discord.ParseWebhookURL(m.WebhookURL)
	return err
}

type LoadRateLimitStateMessage struct {
	Destination string
	BucketKey   string
}

func (LoadRateLimitStateMessage) Type() string { return TypeLoadRateLimitState }

func (m LoadRateLimitStateMessage) Validate() error {
	if strings.TrimSpace(m.Destination) == "" {
		return queryValidationError("destination", "destination is required")
	}
	if strings.TrimSpace(m.BucketKey) == "" {
		return queryValidationError("bucket_key", "bucket key is required")
	}
	return nil
}
