package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsbattles/versus/internal/extract"
	"github.com/vsbattles/versus/internal/handlers"
	"github.com/vsbattles/versus/internal/storage"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the versus HTTP API",
		Long: `Starts the HTTP API on the specified port.

The API lists configured stats, extracts characters from posted stat sheets, stores
them in SQLite and runs battles between stored character versions.`,
		Example: `  # Start server on default port 8888
  versus serve

  # Start server on custom port with a specific database
  versus serve --port 3000 --db data/versus.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagFromEnv(cmd, "db", "VERSUS_DB", &dbPath)

			set, err := opts.loadTiers()
			if err != nil {
				return err
			}
			store, err := storage.Open(dbPath, set)
			if err != nil {
				return err
			}
			defer store.Close()

			handler := handlers.New(store, extract.New(set))

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Versus API available", "addr", addr, "url", "http://localhost"+addr, "db", dbPath)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
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

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&dbPath, "db", defaultDB, "SQLite database path")

	return cmd
}
