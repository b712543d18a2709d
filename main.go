package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/williamokano/r2_uploader/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize logger with default settings; flags override it before any command runs
	logger.Init("info", "json")

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		// The failure notice has already been printed
		if errors.Is(err, errBatchFailed) {
			os.Exit(1)
		}
		logger.Get().Fatal().Err(err).Msg("r2_uploader failed")
	}
}
