package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/regula/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/regula/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ask API over HTTP",
	Long: `Start the HTTP API.

Routes:
  POST /ask      {"question": "..."} -> {"answer": "...", "references": [...]}
  GET  /healthz  liveness and regulation count
  GET  /metrics  Prometheus metrics

With --memory the index is built in-process before serving.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "allowed CORS origins (default localhost)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	origins, err := cmd.Flags().GetStringSlice("cors-origin")
	if err != nil {
		return fmt.Errorf("getting cors-origin flag: %w", err)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = settings.ServerAddr
	}

	ask, err := requireAsk()
	if err != nil {
		return err
	}
	if err := warmMemoryIndex(cmd); err != nil {
		return err
	}

	var timeout time.Duration
	if settings.AskTimeout > 0 {
		timeout = settings.AskTimeout + 10*time.Second
	}

	m := requireCollector()
	server := httpapi.NewServer(httpapi.Options{
		Ask:            ask,
		Logger:         logger.Named("http"),
		Observer:       m,
		MetricsHandler: m.Handler(),
		RequestTimeout: timeout,
		AllowedOrigins: origins,
	})

	cmd.Printf("Listening on http://%s\n", addr)
	return server.ListenAndServe(cmd.Context(), addr)
}

// warmMemoryIndex builds the process-local index when --memory is set,
// since it starts empty.
func warmMemoryIndex(cmd *cobra.Command) error {
	if !inMemory {
		return nil
	}
	return buildIndexQuietly(cmd.Context())
}

func buildIndexQuietly(ctx context.Context) error {
	svc, err := requireIndex()
	if err != nil {
		return err
	}
	report, err := svc.Build(ctx, false)
	if err != nil {
		return fmt.Errorf("build in-memory index: %w", err)
	}
	logger.Info("In-memory index: %d/%d chunks", report.Indexed, report.Total)
	return nil
}
