// Command canestatsctl queries the sugarcane dataset from the terminal and
// manages stored snapshots.
package main

import (
	"context"
	"log/slog"
	"os"

	"canestats/internal/cli"
	"canestats/internal/log"
)

func main() {
	cli.LoadEnvFile()
	ctx, cancel := cli.ShutdownContext(context.Background(), log.NewText(os.Stderr, slog.LevelInfo, "cli"))
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
