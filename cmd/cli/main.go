package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/bloodlink/internal/client/cli"
	"github.com/dmitrijs2005/bloodlink/internal/client/config"
	"github.com/dmitrijs2005/bloodlink/internal/logging"
)

func main() {

	ctx := context.Background()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "cli stopped", "error", err)
	}

}
