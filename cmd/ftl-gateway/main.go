// Command ftl-gateway runs the standalone JWT authentication gateway
// (spec.md §4.6) in front of a deployed MCP backend.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fastertools/ftl-cli/internal/gateway"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := gateway.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load gateway configuration: %w", err)
	}

	addr := os.Getenv("FTL_GATEWAY_LISTEN_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}

	server := &http.Server{
		Addr:    addr,
		Handler: gateway.NewHandler(cfg),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("gateway listening on %s (issuer=%s)", addr, cfg.JWTIssuer)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
