package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aircargo-labs/awb-extractor/internal/config"
	"github.com/aircargo-labs/awb-extractor/internal/extract"
	"github.com/aircargo-labs/awb-extractor/internal/handlers"
	"github.com/aircargo-labs/awb-extractor/internal/rasterize"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the waybill extraction interface",
		Long: `Starts the Air Waybill extractor web interface on the specified port.

The page accepts a PDF upload, runs the extraction pipeline against the
configured vision LLM, and renders the result as a sectioned form with an
optional JSON/XLSX download.`,
		Example: `  # Start server on default port 8888
  awb-extractor serve

  # Start server on custom port
  awb-extractor serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			ras := rasterize.New(rasterize.Config{
				Pdftoppm: cfg.Rasterize.Pdftoppm,
				DPI:      cfg.Rasterize.DPI,
				MaxWidth: cfg.Rasterize.MaxWidth,
			}, slog.Default())
			service := extract.NewService(ras, cfg.Inference.Temperature, slog.Default())
			handler := handlers.New(service, cfg)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/extract", handler.HandleExtract)
			mux.HandleFunc("/api/export/", handler.HandleExport)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Waybill extractor interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default 8888)")

	return cmd
}
