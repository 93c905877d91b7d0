package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/goSession/internal/httpapi"
	promexport "github.com/MrEthical07/goSession/metrics/export/prometheus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the session HTTP API",
		Long:  `Starts the JSON session API with /api/session, /api/me, /healthz and /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTP.Addr = addr
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			engine, cleanup, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := newHTTPServer(cfg, httpapi.NewHandler(&httpapi.Server{
				Engine:  engine,
				Logger:  logger,
				Metrics: promexport.NewPrometheusExporter(engine).Handler(),
			}))

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("sessiond listening", "addr", srv.Addr, "mode", engine.Mode().String())
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err

			case sig := <-shutdown:
				logger.Info("shutting down", "signal", sig.String())
				ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					logger.Error("graceful shutdown did not complete", "timeout", cfg.HTTP.ShutdownTimeout, "error", err)
					return srv.Close()
				}
				logger.Info("sessiond stopped")
				return nil
			}
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
	return cmd
}

func newHTTPServer(cfg *fileConfig, handler http.Handler) *http.Server {
	readHeaderTimeout := cfg.HTTP.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 5 * time.Second
	}
	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
