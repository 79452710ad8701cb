package command

import (
	"github.com/goliatone/go-webhooks/discord"
)

const (
	TypeSendDiscord       = "webhooks.command.discord.send"
	TypeSendDiscordEmbeds = "webhooks.command.discord.send_embeds"
)

// SendDiscordMessage executes the configured Discord webhook. BestEffort
// swallows delivery failures so dispatch never fails because of them.
type SendDiscordMessage struct {
	Message    discord.Message
	BestEffort bool
}

func (SendDiscordMessage) Type() string { return TypeSendDiscord }

func (m SendDiscordMessage) Validate() error {
	return discord.Validate(m.Message, 0)
}

type SendDiscordEmbedsMessage struct {
	Embeds []discord.Embed
}

func (SendDiscordEmbedsMessage) Type() string { return TypeSendDiscordEmbeds }

func (m SendDiscordEmbedsMessage) Validate() error {
	if len(m.Embeds) == 0 {
		return commandValidationError("embeds", "at least one embed is required")
	}
	return discord.Validate(discord.Message{Embeds: m.Embeds}, 0)
}
