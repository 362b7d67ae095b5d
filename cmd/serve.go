package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/tradewire/internal/logger"
	"github.com/matheuskafuri/tradewire/internal/metrics"
	"github.com/matheuskafuri/tradewire/internal/poller"
	"github.com/matheuskafuri/tradewire/internal/server"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve classified headlines over HTTP",
	Long: `Expose the pipeline as a JSON API with Prometheus metrics.

  GET /api/headlines?category=tech&urgent=true
  GET /api/categories
  GET /healthz
  GET /metrics

All clients share one refresh cache, which is kept warm in the background.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Get()
	metrics.Init()

	st := buildStack(cfg)
	defer st.Close()

	addr := flagServeAddr
	if addr == "" {
		addr = cfg.ServeAddr()
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.New(st.service, st.cache, version).Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	warm := poller.New("cache-warmer", cfg.RefreshDuration(), func(ctx context.Context) error {
		_, err := st.cache.Get(ctx)
		return err
	})
	if err := warm.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("serving", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		warm.Stop()
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	warm.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
