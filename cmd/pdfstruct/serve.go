package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/internal/config"
	"github.com/pdfstruct/pdfstruct/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pdfstruct server",
	Long: `Start the pdfstruct HTTP server.

The server watches its config file and rebuilds the extraction pipeline
when it changes. External engines (layout detector, grid table engine,
remote parser) are optional; the server degrades to the built-in
strategies when they are not configured.

Examples:
  pdfstruct serve                    # Start on default port 8080
  pdfstruct serve --port 3000        # Start on custom port
  pdfstruct serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		mgr.WatchConfig()

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: mgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
