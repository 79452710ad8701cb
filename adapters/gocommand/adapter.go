// Package gocommand registers the webhook commands and queries with
// go-command registries and dispatchers, optionally mirrored onto a go-job
// queue registry.
package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"

	webhookcommand "github.com/goliatone/go-webhooks/command"
	"github.com/goliatone/go-webhooks/discord"
	webhookquery "github.com/goliatone/go-webhooks/query"
	"github.com/goliatone/go-webhooks/ratelimit"
)

// ValidateMessageContract requires a non-empty Type() and runs Validate()
// when the message has one.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type Registry struct {
	registry *command.Registry
}

func NewRegistry(registry *command.Registry) *Registry {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &Registry{registry: registry}
}

func (r *Registry) Unwrap() *command.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Registry) Register(handler any) error {
	if r == nil || r.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return r.registry.RegisterCommand(handler)
}

// MirrorToQueue registers a resolver that copies every registered command
// into queueRegistry during Initialize.
func (r *Registry) MirrorToQueue(key string, queueRegistry *jobqueuecommand.Registry) error {
	if r == nil || r.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return r.registry.AddResolver(strings.TrimSpace(key), jobqueuecommand.QueueResolver(queueRegistry))
}

func (r *Registry) Initialize() error {
	if r == nil || r.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return r.registry.Initialize()
}

// Subscriptions collects dispatcher subscriptions so they can be released
// together.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, sub := range s {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}

func RegisterCommand[T any](
	registry *Registry,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if registry == nil || registry.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := registry.Register(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterQuery[T any, R any](
	registry *Registry,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if registry == nil || registry.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if err := registry.Register(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// DiscordHandlers lists the dependencies of the Discord commands and
// queries. Nil fields skip the matching handlers.
type DiscordHandlers struct {
	Sender       webhookcommand.DiscordSender
	InfoResolver webhookquery.InfoResolver
	StateStore   ratelimit.StateStore
}

// RegisterDiscord subscribes every Discord handler whose dependency is set.
// On error the subscriptions made so far are released.
func RegisterDiscord(registry *Registry, deps DiscordHandlers, runnerOpts ...runner.Option) (Subscriptions, error) {
	var subs Subscriptions
	add := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			subs.Unsubscribe()
			return err
		}
		subs = append(subs, sub)
		return nil
	}

	if deps.Sender != nil {
		if err := add(RegisterCommand[webhookcommand.SendDiscordMessage](registry, webhookcommand.NewSendDiscordCommand(deps.Sender), runnerOpts...)); err != nil {
			return nil, err
		}
		if err := add(RegisterCommand[webhookcommand.SendDiscordEmbedsMessage](registry, webhookcommand.NewSendDiscordEmbedsCommand(deps.Sender), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if deps.InfoResolver != nil {
		if err := add(RegisterQuery[webhookquery.ResolveDiscordInfoMessage, discord.Info](registry, webhookquery.NewResolveDiscordInfoQuery(deps.InfoResolver), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if deps.StateStore != nil {
		if err := add(RegisterQuery[webhookquery.LoadRateLimitStateMessage, ratelimit.State](registry, webhookquery.NewLoadRateLimitStateQuery(deps.StateStore), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}
