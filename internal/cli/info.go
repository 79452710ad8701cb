package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func infoCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "show the webhook name, channel and guild",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(cmd, deps)
			if err != nil {
				return err
			}
			info, err := client.Info(ctx)
			if err != nil {
				return err
			}
			out := cmd.Root().Writer
			fmt.Fprintf(out, "id:       %s\n", info.ID)
			fmt.Fprintf(out, "name:     %s\n", info.Name)
			fmt.Fprintf(out, "channel:  %s\n", info.ChannelID)
			if info.GuildID != "" {
				fmt.Fprintf(out, "guild:    %s\n", info.GuildID)
			}
			return nil
		},
	}
}
