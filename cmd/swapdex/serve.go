package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/swapdex/internal/transport/chi"
	"github.com/kailas-cloud/swapdex/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port > 0 {
				opts.cfg.HTTP.Port = port
			}
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "override http.port")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, logger := opts.cfg, opts.logger

	logger.Info("Starting swapdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", opts.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("engine_urls", cfg.Engine.URLs),
		zap.String("lock_driver", cfg.Lock.Driver),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server := chiTransport.NewServer(a.search, a.swaps, a.health, logger).
		WithMaxWriteConnections(cfg.Engine.MaxWriteConnections)
	if a.loader != nil {
		server.WithLoader(a.loader, cfg.Source.Partitions)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
