// Command ngola runs the Ngola Suite core: it opens the configured backends
// and serves health probes and billing webhooks until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ngolasuite/ngola"
	"github.com/ngolasuite/ngola/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New(logger.WithDevelopment("ngola"))

	cfg, err := ngola.LoadConfig()
	if err != nil {
		log.ErrorContext(ctx, "load config", logger.Error(err))
		os.Exit(1)
	}

	app, err := ngola.New(ctx, cfg)
	if err != nil {
		log.ErrorContext(ctx, "start", logger.Error(err))
		os.Exit(1)
	}
	logger.SetAsDefault(app.Logger)

	if err := app.Serve(ctx); err != nil {
		app.Logger.ErrorContext(ctx, "serve", logger.Error(err))
	}
	if err := app.Close(); err != nil {
		app.Logger.ErrorContext(ctx, "close", logger.Error(err))
		os.Exit(1)
	}
}
