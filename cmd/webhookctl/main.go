package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-webhooks/internal/cli"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	app := cli.NewApp(cli.Deps{Out: os.Stdout, Err: os.Stderr})
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
