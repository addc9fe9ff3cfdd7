// cmd/rasff/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/rasff/internal/cli"
)

func main() {
	// Cancelling the context kills the browser and aborts the run before anything is written
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Interrupt received, shutting down gracefully...")
		cancel()
	}()

	code := cli.Execute(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}
