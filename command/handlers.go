package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-webhooks/discord"
)

// DiscordSender is the part of discord.Sender the commands need.
type DiscordSender interface {
	Execute(ctx context.Context, msg discord.Message) (discord.SentMessage, error)
	SendWithoutError(ctx context.Context, msg discord.Message) bool
	SendEmbeds(ctx context.Context, embeds ...discord.Embed) error
}

type SendDiscordCommand struct {
	sender DiscordSender
}

func NewSendDiscordCommand(sender DiscordSender) *SendDiscordCommand {
	return &SendDiscordCommand{sender: sender}
}

// Execute stores the created message in the result collector when one is
// attached to ctx. Best effort sends store whether delivery succeeded.
func (c *SendDiscordCommand) Execute(ctx context.Context, msg SendDiscordMessage) error {
	if c == nil || c.sender == nil {
		return commandDependencyError("command: discord sender is required")
	}
	if msg.BestEffort {
		storeResult(ctx, c.sender.SendWithoutError(ctx, msg.Message))
		return nil
	}
	out, err := c.sender.Execute(ctx, msg.Message)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SendDiscordEmbedsCommand struct {
	sender DiscordSender
}

func NewSendDiscordEmbedsCommand(sender DiscordSender) *SendDiscordEmbedsCommand {
	return &SendDiscordEmbedsCommand{sender: sender}
}

func (c *SendDiscordEmbedsCommand) Execute(ctx context.Context, msg SendDiscordEmbedsMessage) error {
	if c == nil || c.sender == nil {
		return commandDependencyError("command: discord sender is required")
	}
	return c.sender.SendEmbeds(ctx, msg.Embeds...)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
