package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-webhooks/discord"
	"github.com/goliatone/go-webhooks/ratelimit"
)

var (
	_ gocmd.Querier[ResolveDiscordInfoMessage, discord.Info]    = (*ResolveDiscordInfoQuery)(nil)
	_ gocmd.Querier[LoadRateLimitStateMessage, ratelimit.State] = (*LoadRateLimitStateQuery)(nil)
	_ InfoResolver                                              = (*discord.InfoResolver)(nil)
)
