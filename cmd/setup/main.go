package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/sentiment-analyzer/internal/clients"
	"github.com/spacesedan/sentiment-analyzer/internal/logging"
	"github.com/spacesedan/sentiment-analyzer/internal/setup"
)

func main() {
	logging.InitLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bootstrapper := setup.NewBootstrapper(
		setup.NewExecRunner(),
		clients.GetPlatformClient(),
		os.Stdout,
	)

	if err := bootstrapper.Run(ctx); err != nil {
		slog.Error("[Setup] Setup failed",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}
