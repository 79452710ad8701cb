package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-webhooks/discord"
)

var (
	_ gocmd.Commander[SendDiscordMessage]       = (*SendDiscordCommand)(nil)
	_ gocmd.Commander[SendDiscordEmbedsMessage] = (*SendDiscordEmbedsCommand)(nil)
	_ DiscordSender                             = (*discord.Sender)(nil)
)
