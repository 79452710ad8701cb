package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	deliverer       Deliverer
	rateLimitPolicy RateLimitPolicy
	now             func() time.Time
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithDeliverer(deliverer Deliverer) Option {
	return func(b *serviceBuilder) {
		b.deliverer = deliverer
	}
}

func WithRateLimitPolicy(policy RateLimitPolicy) Option {
	return func(b *serviceBuilder) {
		b.rateLimitPolicy = policy
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *serviceBuilder) {
		b.now = now
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("webhooks", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     MapError,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// StaticConfigLoader serves a fixed raw map, mostly for tests and CLIs.
type StaticConfigLoader struct {
	Values map[string]any
}

func (l StaticConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	return copyAnyMap(l.Values), nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = StaticConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// configToLayerMap keeps only set values unless includeZero is true, so
// higher layers never erase lower ones with zero values.
func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	discord := map[string]any{}
	setString(discord, "webhook_url", cfg.Discord.WebhookURL, includeZero)
	setString(discord, "username", cfg.Discord.Username, includeZero)
	setString(discord, "avatar_url", cfg.Discord.AvatarURL, includeZero)
	setString(discord, "thread_id", cfg.Discord.ThreadID, includeZero)
	if includeZero || cfg.Discord.Wait {
		discord["wait"] = cfg.Discord.Wait
	}
	if includeZero || cfg.Discord.MaxPayloadBytes != 0 {
		discord["max_payload_bytes"] = cfg.Discord.MaxPayloadBytes
	}
	setDuration(discord, "info_ttl", cfg.Discord.InfoTTL, includeZero)
	if len(discord) > 0 {
		layer["discord"] = discord
	}

	transport := map[string]any{}
	setDuration(transport, "timeout", cfg.Transport.Timeout, includeZero)
	if includeZero || cfg.Transport.MaxResponseBodyBytes != 0 {
		transport["max_response_body_bytes"] = cfg.Transport.MaxResponseBodyBytes
	}
	if len(transport) > 0 {
		layer["transport"] = transport
	}

	rateLimit := map[string]any{}
	if includeZero || cfg.RateLimit.Disabled {
		rateLimit["disabled"] = cfg.RateLimit.Disabled
	}
	setDuration(rateLimit, "initial_backoff", cfg.RateLimit.InitialBackoff, includeZero)
	setDuration(rateLimit, "max_backoff", cfg.RateLimit.MaxBackoff, includeZero)
	if len(rateLimit) > 0 {
		layer["rate_limit"] = rateLimit
	}

	delivery := map[string]any{}
	if includeZero || cfg.Delivery.MaxAttempts != 0 {
		delivery["max_attempts"] = cfg.Delivery.MaxAttempts
	}
	setDuration(delivery, "initial_backoff", cfg.Delivery.InitialBackoff, includeZero)
	setDuration(delivery, "max_backoff", cfg.Delivery.MaxBackoff, includeZero)
	if includeZero || cfg.Delivery.DiscardOnMax {
		delivery["discard_on_max"] = cfg.Delivery.DiscardOnMax
	}
	if len(delivery) > 0 {
		layer["delivery"] = delivery
	}
	return layer
}

func setString(layer map[string]any, key string, value string, includeZero bool) {
	if includeZero || strings.TrimSpace(value) != "" {
		layer[key] = strings.TrimSpace(value)
	}
}

func setDuration(layer map[string]any, key string, value time.Duration, includeZero bool) {
	if includeZero || value != 0 {
		layer[key] = value
	}
}
