package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/regula/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed chunks into the vector index",
	Long: `Embed every chunk in the chunk file and store it in the vector index.

The chunk file is validated first; a file with validation errors is refused
unless --force is given. Chunks that cannot be embedded are written to the
failed chunks file and do not stop the build.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last index build",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

// workerSetter is implemented by index services with a configurable pool.
type workerSetter interface {
	SetWorkers(n int)
}

func init() {
	indexCmd.Flags().BoolP("force", "f", false, "index even when validation reports errors")
	indexCmd.Flags().Int("workers", 0, "batches embedded concurrently (0 = default)")
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("getting force flag: %w", err)
	}
	workers, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return fmt.Errorf("getting workers flag: %w", err)
	}

	svc, err := requireIndex()
	if err != nil {
		return err
	}
	if ws, ok := svc.(workerSetter); ok && workers > 0 {
		ws.SetWorkers(workers)
	}

	report, err := svc.Build(cmd.Context(), force)
	if err != nil {
		return err
	}
	printIndexReport(cmd.OutOrStdout(), report)
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	svc, err := requireIndex()
	if err != nil {
		return err
	}
	report, err := svc.LastRun(cmd.Context())
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Println("No index builds recorded.")
		return nil
	}
	if err != nil {
		return err
	}
	printIndexReport(cmd.OutOrStdout(), report)
	return nil
}

func printIndexReport(out io.Writer, r *domain.IndexReport) {
	fmt.Fprintf(out, "Run:      %s\n", r.RunID)
	fmt.Fprintf(out, "Started:  %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Duration: %s\n", r.Duration().Round(time.Millisecond))
	fmt.Fprintf(out, "Indexed:  %d/%d chunks\n", r.Indexed, r.Total)
	if len(r.Failed) == 0 {
		return
	}
	fmt.Fprintf(out, "Failed:   %d chunks\n", len(r.Failed))
	for _, f := range r.Failed {
		fmt.Fprintf(out, "  %s: %s\n", f.ChunkID, f.Error)
	}
}
