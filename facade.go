package webhooks

import (
	"context"
	"fmt"

	"github.com/goliatone/go-job/queue"

	"github.com/goliatone/go-webhooks/adapters/gocommand"
	"github.com/goliatone/go-webhooks/adapters/gojob"
	webhookcommand "github.com/goliatone/go-webhooks/command"
	"github.com/goliatone/go-webhooks/core"
	"github.com/goliatone/go-webhooks/discord"
	webhookquery "github.com/goliatone/go-webhooks/query"
	"github.com/goliatone/go-webhooks/ratelimit"
	"github.com/goliatone/go-webhooks/transport"
)

type Commands struct {
	Send       *webhookcommand.SendDiscordCommand
	SendEmbeds *webhookcommand.SendDiscordEmbedsCommand
}

type Queries struct {
	Info           *webhookquery.ResolveDiscordInfoQuery
	RateLimitState *webhookquery.LoadRateLimitStateQuery
}

// Discord bundles a configured service, sender and info resolver for one
// Discord webhook.
type Discord struct {
	service  *core.Service
	sender   *discord.Sender
	info     *discord.InfoResolver
	store    ratelimit.StateStore
	commands Commands
	queries  Queries
}

type DiscordOption func(*discordOptions)

type discordOptions struct {
	client         transport.HTTPDoer
	stateStore     ratelimit.StateStore
	serviceOptions []core.Option
	senderOptions  []discord.SenderOption
}

// WithHTTPClient replaces the http client built from the transport config.
func WithHTTPClient(client transport.HTTPDoer) DiscordOption {
	return func(o *discordOptions) {
		o.client = client
	}
}

// WithStateStore replaces the cached in-memory rate limit state store.
func WithStateStore(store ratelimit.StateStore) DiscordOption {
	return func(o *discordOptions) {
		o.stateStore = store
	}
}

func WithServiceOptions(opts ...core.Option) DiscordOption {
	return func(o *discordOptions) {
		o.serviceOptions = append(o.serviceOptions, opts...)
	}
}

func WithSenderOptions(opts ...discord.SenderOption) DiscordOption {
	return func(o *discordOptions) {
		o.senderOptions = append(o.senderOptions, opts...)
	}
}

// NewDiscord wires the REST transport, the adaptive rate limit policy and a
// Discord sender for cfg.Discord.WebhookURL. Service options run after the
// defaults so they can replace the deliverer or the policy.
func NewDiscord(cfg Config, opts ...DiscordOption) (*Discord, error) {
	options := discordOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	rest := transport.NewRESTDelivererFromConfig(cfg.Transport)
	if options.client != nil {
		rest.Client = options.client
	}
	store := options.stateStore
	if store == nil {
		cached, err := ratelimit.NewCachedMemoryStateStore(0)
		if err != nil {
			return nil, fmt.Errorf("webhooks: rate limit state store: %w", err)
		}
		store = cached
	}

	policy := ratelimit.NewAdaptivePolicyFromConfig(store, cfg.RateLimit)
	serviceOptions := append([]core.Option{
		core.WithDeliverer(rest),
		core.WithRateLimitPolicy(policy),
	}, options.serviceOptions...)
	service, err := core.NewService(cfg, serviceOptions...)
	if err != nil {
		return nil, err
	}

	// The service resolves file config on top of cfg; retune the transport
	// and the policy to the resolved values.
	resolved := service.Config()
	configured := transport.NewRESTDelivererFromConfig(resolved.Transport)
	rest.MaxResponseBodyBytes = configured.MaxResponseBodyBytes
	if options.client == nil {
		rest.Client = configured.Client
	}
	tuned := ratelimit.NewAdaptivePolicyFromConfig(store, resolved.RateLimit)
	policy.InitialBackoff = tuned.InitialBackoff
	policy.MaxBackoff = tuned.MaxBackoff

	final := resolved.Discord
	sender, err := discord.NewSenderFromConfig(final, service, options.senderOptions...)
	if err != nil {
		return nil, err
	}
	info := discord.NewInfoResolver(service, final.InfoTTL)

	return &Discord{
		service: service,
		sender:  sender,
		info:    info,
		store:   store,
		commands: Commands{
			Send:       webhookcommand.NewSendDiscordCommand(sender),
			SendEmbeds: webhookcommand.NewSendDiscordEmbedsCommand(sender),
		},
		queries: Queries{
			Info:           webhookquery.NewResolveDiscordInfoQuery(info),
			RateLimitState: webhookquery.NewLoadRateLimitStateQuery(store),
		},
	}, nil
}

func (d *Discord) Service() *core.Service {
	if d == nil {
		return nil
	}
	return d.service
}

func (d *Discord) Sender() *discord.Sender {
	if d == nil {
		return nil
	}
	return d.sender
}

func (d *Discord) Commands() Commands {
	if d == nil {
		return Commands{}
	}
	return d.commands
}

func (d *Discord) Queries() Queries {
	if d == nil {
		return Queries{}
	}
	return d.queries
}

func (d *Discord) Send(ctx context.Context, msg discord.Message) error {
	return d.Sender().Send(ctx, msg)
}

func (d *Discord) SendWithoutError(ctx context.Context, msg discord.Message) bool {
	return d.Sender().SendWithoutError(ctx, msg)
}

func (d *Discord) SendEmbeds(ctx context.Context, embeds ...discord.Embed) error {
	return d.Sender().SendEmbeds(ctx, embeds...)
}

// Info resolves metadata of the configured webhook.
func (d *Discord) Info(ctx context.Context) (discord.Info, error) {
	if d == nil || d.info == nil || d.sender == nil {
		return discord.Info{}, fmt.Errorf("webhooks: discord client is not configured")
	}
	return d.info.Resolve(ctx, d.sender.Webhook().String())
}

// Register subscribes the Discord commands and queries on registry.
func (d *Discord) Register(registry *gocommand.Registry) (gocommand.Subscriptions, error) {
	if d == nil {
		return nil, fmt.Errorf("webhooks: discord client is not configured")
	}
	return gocommand.RegisterDiscord(registry, gocommand.DiscordHandlers{
		Sender:       d.sender,
		InfoResolver: d.info,
		StateStore:   d.store,
	})
}

// Queued returns a sender that validates in the caller and publishes the
// delivery onto enqueuer.
func (d *Discord) Queued(enqueuer queue.Enqueuer) *core.AsyncSender[discord.Message] {
	return gojob.NewQueuedSender[discord.Message](enqueuer, d.Sender().Encode)
}

// Worker consumes jobs published by Queued and delivers them through the
// rate limited service.
func (d *Discord) Worker(dequeuer queue.Dequeuer) (*core.DeliveryWorker, error) {
	if d == nil || d.service == nil {
		return nil, fmt.Errorf("webhooks: discord client is not configured")
	}
	return gojob.NewDeliveryWorker(dequeuer, d.service, d.service.Config().Delivery)
}
