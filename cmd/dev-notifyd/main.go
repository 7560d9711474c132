package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/antonio-hickey/dev-notify/internal/di"
)

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	application, err := di.InitializeApp(*configPath)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("application runtime error: %v", err)
	}
}
