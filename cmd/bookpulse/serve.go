package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/bookpulse/internal/monitoring"
	"github.com/spacesedan/bookpulse/internal/sentiment"
	"github.com/spacesedan/bookpulse/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sentiment.Init(); err != nil {
		slog.Error("[Main] Lexicons failed to load, queries will fail", slog.String("error", err.Error()))
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	sourceHealthy := &atomic.Bool{}
	go monitoring.MonitorSourceHealth(ctx, p.source, sourceHealthy, monitoring.HEALTHCHECK_INTERVAL)

	srv, err := web.NewServer(cfg.App.Port, p.analyzer, sourceHealthy)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("[Main] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
