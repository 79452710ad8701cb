// Package webhooks sends typed notifications to chat webhooks. The root
// package re-exports the core contracts and wires a ready to use Discord
// client; the building blocks live in core, discord, transport and
// ratelimit.
package webhooks

import (
	"context"

	"github.com/goliatone/go-webhooks/core"
)

type Config = core.Config
type DiscordConfig = core.DiscordConfig
type TransportConfig = core.TransportConfig
type RateLimitConfig = core.RateLimitConfig
type DeliveryConfig = core.DeliveryConfig

type Option = core.Option
type Service = core.Service

type DeliveryRequest = core.DeliveryRequest
type DeliveryResponse = core.DeliveryResponse
type Deliverer = core.Deliverer

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithDeliverer       = core.WithDeliverer
	WithRateLimitPolicy = core.WithRateLimitPolicy
	WithClock           = core.WithClock

	IsValidationFailed = core.IsValidationFailed
	IsRateLimited      = core.IsRateLimited
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

// SendWithoutError delivers data and reports success as a bool. It never
// returns an error and never panics.
func SendWithoutError[T any](ctx context.Context, sender core.Sender[T], data T) bool {
	return core.SendWithoutError[T](ctx, sender, data)
}
