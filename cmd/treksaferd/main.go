// Command treksaferd is the TrekSafer process entrypoint: it loads
// configuration, wires every component in spec.md §2 together, and runs
// the configured transports until shutdown.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"treksafer/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Configuration errors at startup are fatal, per §7.
		log.Fatalf("treksaferd: config load failed: %v", err)
	}

	logger := cfg.NewLogger()

	app, err := New(logger, cfg)
	if err != nil {
		logger.Error("treksaferd: startup failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		logger.Error("treksaferd: exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("treksaferd: shut down cleanly")
}
