package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quotedesk/internal/config"
	"quotedesk/internal/listener"
	"quotedesk/internal/logging"
	"quotedesk/internal/pipeline"
	"quotedesk/internal/pricebook"
	"quotedesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	defer logging.Sync()

	book, err := pricebook.Load(cfg.RulesDir)
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	processor := pipeline.NewProcessingService(db, cfg.DataDir, book)
	svc := listener.NewService(db, cfg, processor)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
