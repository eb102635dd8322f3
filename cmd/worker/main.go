// Standalone alert queue worker. Runs the same processing pipeline as the
// server but consumes tasks only; no HTTP surface and no scheduler.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"velocity/internal/app"
	"velocity/internal/config"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	if c.Worker == nil {
		log.Fatalf("redis is required for the standalone worker")
	}

	if err := c.Worker.Start(); err != nil {
		log.Fatalf("failed to start alert worker: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	c.Worker.Shutdown()
}
