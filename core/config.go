package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultMaxPayloadBytes      = 8 << 20 // 8 MiB
	DefaultInfoTTL              = 24 * time.Hour
	DefaultTransportTimeout     = 30 * time.Second
	DefaultResponseBodyLimit    = 1 << 20 // 1 MiB
	DefaultDeliveryMaxAttempts  = 5
	DefaultDeliveryInitialDelay = 2 * time.Second
	DefaultDeliveryMaxDelay     = 5 * time.Minute
)

type DiscordConfig struct {
	WebhookURL      string        `koanf:"webhook_url" mapstructure:"webhook_url"`
	Username        string        `koanf:"username" mapstructure:"username"`
	AvatarURL       string        `koanf:"avatar_url" mapstructure:"avatar_url"`
	ThreadID        string        `koanf:"thread_id" mapstructure:"thread_id"`
	Wait            bool          `koanf:"wait" mapstructure:"wait"`
	MaxPayloadBytes int           `koanf:"max_payload_bytes" mapstructure:"max_payload_bytes"`
	InfoTTL         time.Duration `koanf:"info_ttl" mapstructure:"info_ttl"`
}

type TransportConfig struct {
	Timeout              time.Duration `koanf:"timeout" mapstructure:"timeout"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

type RateLimitConfig struct {
	Disabled       bool          `koanf:"disabled" mapstructure:"disabled"`
	InitialBackoff time.Duration `koanf:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff" mapstructure:"max_backoff"`
}

// DeliveryConfig bounds queued retries. Exhausted jobs are dead lettered
// unless DiscardOnMax is set.
type DeliveryConfig struct {
	MaxAttempts    int           `koanf:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff time.Duration `koanf:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff" mapstructure:"max_backoff"`
	DiscardOnMax   bool          `koanf:"discard_on_max" mapstructure:"discard_on_max"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	Discord     DiscordConfig   `koanf:"discord" mapstructure:"discord"`
	Transport   TransportConfig `koanf:"transport" mapstructure:"transport"`
	RateLimit   RateLimitConfig `koanf:"rate_limit" mapstructure:"rate_limit"`
	Delivery    DeliveryConfig  `koanf:"delivery" mapstructure:"delivery"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "webhooks",
		Discord: DiscordConfig{
			MaxPayloadBytes: DefaultMaxPayloadBytes,
			InfoTTL:         DefaultInfoTTL,
		},
		Transport: TransportConfig{
			Timeout:              DefaultTransportTimeout,
			MaxResponseBodyBytes: DefaultResponseBodyLimit,
		},
		RateLimit: RateLimitConfig{
			InitialBackoff: time.Second,
			MaxBackoff:     time.Minute,
		},
		Delivery: DeliveryConfig{
			MaxAttempts:    DefaultDeliveryMaxAttempts,
			InitialBackoff: DefaultDeliveryInitialDelay,
			MaxBackoff:     DefaultDeliveryMaxDelay,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Discord.MaxPayloadBytes < 0 {
		return fmt.Errorf("core: discord.max_payload_bytes must not be negative")
	}
	if c.Discord.InfoTTL < 0 {
		return fmt.Errorf("core: discord.info_ttl must not be negative")
	}
	if c.Transport.Timeout < 0 {
		return fmt.Errorf("core: transport.timeout must not be negative")
	}
	if c.Delivery.MaxAttempts < 0 {
		return fmt.Errorf("core: delivery.max_attempts must not be negative")
	}
	if c.Delivery.MaxBackoff > 0 && c.Delivery.InitialBackoff > c.Delivery.MaxBackoff {
		return fmt.Errorf("core: delivery.initial_backoff exceeds delivery.max_backoff")
	}
	return nil
}
