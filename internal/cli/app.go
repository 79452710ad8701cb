// Package cli implements the webhookctl command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	webhooks "github.com/goliatone/go-webhooks"
	"github.com/goliatone/go-webhooks/adapters/apexlog"
	"github.com/goliatone/go-webhooks/core"
	"github.com/goliatone/go-webhooks/discord"
	"github.com/goliatone/go-webhooks/transport"
)

// Deps are the process level dependencies of the app. HTTPClient is nil
// outside tests.
type Deps struct {
	Out        io.Writer
	Err        io.Writer
	HTTPClient transport.HTTPDoer
}

func NewApp(deps Deps) *cli.Command {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Err == nil {
		deps.Err = os.Stderr
	}
	return &cli.Command{
		Name:      "webhookctl",
		Usage:     "send Discord webhook messages",
		Writer:    deps.Out,
		ErrWriter: deps.Err,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "webhook-url",
				Aliases: []string{"u"},
				Usage:   "Discord webhook url",
				Sources: cli.NewValueSourceChain(cli.EnvVar("DISCORD_WEBHOOK_URL")),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "yaml config file",
				Sources: cli.NewValueSourceChain(cli.EnvVar("WEBHOOKS_CONFIG")),
			},
			&cli.StringFlag{
				Name:  "username",
				Usage: "default username for sent messages",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "http timeout",
			},
		},
		Commands: []*cli.Command{
			sendCommand(deps),
			infoCommand(deps),
		},
	}
}

// newClient builds the Discord client from the global flags and the
// optional config file. Flags win over the file.
func newClient(cmd *cli.Command, deps Deps, senderOpts ...discord.SenderOption) (*webhooks.Discord, error) {
	cfg := webhooks.Config{}
	cfg.Discord.WebhookURL = cmd.String("webhook-url")
	cfg.Discord.Username = cmd.String("username")
	cfg.Transport.Timeout = cmd.Duration("timeout")

	base := &log.Logger{Handler: apexlog.NewTextHandler(deps.Err), Level: apexlog.LevelFromEnv()}
	serviceOptions := []core.Option{
		core.WithLoggerProvider(apexlog.NewProvider(base)),
		core.WithLogger(apexlog.New(base)),
	}
	if path := cmd.String("config"); path != "" {
		values, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		serviceOptions = append(serviceOptions, core.WithConfigProvider(core.NewCfgxConfigProvider(core.StaticConfigLoader{Values: values})))
	}

	opts := []webhooks.DiscordOption{webhooks.WithServiceOptions(serviceOptions...)}
	if len(senderOpts) > 0 {
		opts = append(opts, webhooks.WithSenderOptions(senderOpts...))
	}
	if deps.HTTPClient != nil {
		opts = append(opts, webhooks.WithHTTPClient(deps.HTTPClient))
	}
	return webhooks.NewDiscord(cfg, opts...)
}

func readConfigFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return values, nil
}
