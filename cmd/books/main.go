// Command books searches and browses the books catalog from the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"books-search/internal/cli"
	"books-search/internal/observability/logging"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 端末では warn 以上だけ出す
	logger := logging.NewWithLevel(os.Stderr, logging.FormatText, logging.LevelOr(slog.LevelWarn))
	slog.SetDefault(logger)

	app := cli.New(version, cli.DefaultOpener, logger)
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close session", slog.Any("error", err))
		}
	}()

	if err := app.Command().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "books:", err)
		return 1
	}
	return 0
}
