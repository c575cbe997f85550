package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/drstein77/batterycatalog/internal/app"
)

func main() {
	const shutdownTimeout = 5 * time.Second
	// Create a root context with the possibility of cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create a channel for signal handling
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	server, err := app.NewServer(ctx, os.Args[1:])
	if err != nil {
		log.Fatalln(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		// Wait for a signal
		sig := <-signalCh
		server.Log.Info(fmt.Sprintf("Received signal: %+v", sig))

		// Cancel the context
		cancel()

		// Perform graceful server shutdown
		server.Shutdown(shutdownTimeout)
	}()

	// Start the server
	if err := server.Serve(); err != nil {
		server.Log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
	<-done
}
