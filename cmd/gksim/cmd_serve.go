package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gksim/withdrawal-simulator/internal/server"
)

var (
	listenFlag  string
	maxBodyFlag int64
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation engine over a JSON API",
	Long: `Serve starts an HTTP server exposing the engine: POST /api/simulate
and POST /api/backtest accept run parameters with optional annual data
and respond with the full results as JSON.`,
	Example: `  gksim serve
  gksim serve --listen :9000 --log-format json`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenFlag, "listen", ":8080", "address to listen on")
	serveCmd.Flags().Int64Var(&maxBodyFlag, "max-body", server.DefaultMaxBodySizeBytes,
		"maximum request body size in bytes")
}

func runServe(cmd *cobra.Command, args []string) error {
	handler := server.NewHandler(logger, maxBodyFlag, version)
	srv := &http.Server{
		Addr:              listenFlag,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", listenFlag))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
