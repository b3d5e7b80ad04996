package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/Amawers/idmsystem-sub001/internal/client/cli"
	"github.com/Amawers/idmsystem-sub001/internal/client/config"
	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

func main() {

	ctx := context.Background()

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
