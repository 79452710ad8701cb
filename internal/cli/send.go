package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-webhooks/discord"
)

func sendCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "execute the webhook with a message",
		UsageText: `webhookctl send [--content TEXT] [--title TEXT] [--field NAME=VALUE]... [--file message.yaml]`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content", Usage: "message content"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "yaml or json message file"},
			&cli.StringFlag{Name: "title", Usage: "embed title"},
			&cli.StringFlag{Name: "description", Usage: "embed description"},
			&cli.StringFlag{Name: "url", Usage: "embed url"},
			&cli.StringFlag{Name: "color", Usage: "embed color as #rrggbb, 0xrrggbb or decimal"},
			&cli.StringFlag{Name: "timestamp", Usage: "embed timestamp: now, RFC3339 or epoch milliseconds"},
			&cli.StringFlag{Name: "footer", Usage: "embed footer text"},
			&cli.StringSliceFlag{Name: "field", Usage: "embed field as NAME=VALUE"},
			&cli.StringSliceFlag{Name: "inline-field", Usage: "inline embed field as NAME=VALUE"},
			&cli.BoolFlag{Name: "wait", Usage: "wait for the created message and print its id"},
			&cli.BoolFlag{Name: "dry-run", Usage: "print the payload instead of sending it"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSend(ctx, cmd, deps)
		},
	}
}

func runSend(ctx context.Context, cmd *cli.Command, deps Deps) error {
	msg, err := messageFromFlags(cmd, time.Now)
	if err != nil {
		return err
	}
	var senderOpts []discord.SenderOption
	if cmd.Bool("wait") {
		senderOpts = append(senderOpts, discord.WithWait(true))
	}
	client, err := newClient(cmd, deps, senderOpts...)
	if err != nil {
		return err
	}
	out := cmd.Root().Writer

	if cmd.Bool("dry-run") {
		req, err := client.Sender().Encode(msg)
		if err != nil {
			return err
		}
		var pretty map[string]any
		if err := json.Unmarshal(req.Body, &pretty); err != nil {
			return err
		}
		formatted, err := json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(formatted))
		fmt.Fprintf(out, "payload size: %s\n", humanize.Bytes(uint64(len(req.Body))))
		return nil
	}

	if !cmd.Bool("wait") {
		return client.Send(ctx, msg)
	}
	sent, err := client.Sender().Execute(ctx, msg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "sent message %s to channel %s\n", sent.ID, sent.ChannelID)
	return nil
}

// messageFromFlags starts from --file when given. --content replaces the
// file content and embed flags append one more embed.
func messageFromFlags(cmd *cli.Command, now func() time.Time) (discord.Message, error) {
	var msg discord.Message
	if path := cmd.String("file"); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return discord.Message{}, fmt.Errorf("open message file %s: %w", path, err)
		}
		defer file.Close()
		msg, err = discord.LoadMessageYAML(file)
		if err != nil {
			return discord.Message{}, err
		}
	}
	if content := cmd.String("content"); content != "" {
		msg.Content = content
	}

	embed, ok, err := embedFromFlags(cmd, now)
	if err != nil {
		return discord.Message{}, err
	}
	if ok {
		msg.Embeds = append(msg.Embeds, embed)
	}
	return msg, nil
}

func embedFromFlags(cmd *cli.Command, now func() time.Time) (discord.Embed, bool, error) {
	builder := discord.NewEmbedBuilder()
	set := false
	if v := cmd.String("title"); v != "" {
		builder.Title(v)
		set = true
	}
	if v := cmd.String("description"); v != "" {
		builder.Description(v)
		set = true
	}
	if v := cmd.String("url"); v != "" {
		builder.URL(v)
		set = true
	}
	if v := cmd.String("color"); v != "" {
		color, err := discord.ParseColor(v)
		if err != nil {
			return discord.Embed{}, false, err
		}
		builder.Color(color)
		set = true
	}
	if v := cmd.String("timestamp"); v != "" {
		if err := applyTimestamp(builder, v, now); err != nil {
			return discord.Embed{}, false, err
		}
		set = true
	}
	if v := cmd.String("footer"); v != "" {
		builder.Footer(discord.Footer{Text: v})
		set = true
	}
	for _, flag := range []string{"field", "inline-field"} {
		for _, raw := range cmd.StringSlice(flag) {
			name, value, found := strings.Cut(raw, "=")
			if !found {
				return discord.Embed{}, false, fmt.Errorf("--%s %q must be NAME=VALUE", flag, raw)
			}
			builder.AddField(strings.TrimSpace(name), strings.TrimSpace(value), flag == "inline-field")
			set = true
		}
	}
	return builder.Build(), set, nil
}

func applyTimestamp(builder *discord.EmbedBuilder, raw string, now func() time.Time) error {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "now") {
		builder.Timestamp(now())
		return nil
	}
	if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
		builder.TimestampMillis(millis)
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("--timestamp %q must be now, RFC3339 or epoch milliseconds", raw)
	}
	builder.Timestamp(parsed)
	return nil
}
