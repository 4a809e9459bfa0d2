package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/regula/internal/adapters/driven/storage/textfile"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driving"
	"github.com/custodia-labs/regula/internal/logger"
	"github.com/custodia-labs/regula/internal/postprocessors/validator"
)

// watchDebounce collapses bursts of editor writes into one rebuild.
const watchDebounce = 300 * time.Millisecond

var normalizeCmd = &cobra.Command{
	Use:   "normalize <input> <output>",
	Short: "Normalise a raw regulation text",
	Long: `Normalise a raw regulation text extracted from a PDF.

Standardises whitespace and punctuation, merges lines broken inside an
article, inserts the configured chapter titles and tidies table blocks.`,
	Args: cobra.ExactArgs(2),
	RunE: runNormalize,
}

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Split regulations into article chunks",
	Long: `Segment every configured regulation into articles, tables and notes,
split them into chunks and write the combined chunk file.

With --watch the chunk file is rebuilt whenever a regulation text changes.`,
	Args: cobra.NoArgs,
	RunE: runChunk,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the chunk file",
	Long:  `Check the chunk file for structural problems before indexing.`,
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove abnormal characters from chunks",
	Long: `Write a cleaned copy of the chunk file with characters outside the
allowed set removed from each chunk's content.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	chunkCmd.Flags().BoolP("watch", "w", false, "rebuild when a regulation text changes")

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(cleanCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	svc, err := requireIngestion()
	if err != nil {
		return err
	}
	if err := svc.NormaliseFile(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Normalised %s -> %s\n", args[0], args[1])
	return nil
}

func runChunk(cmd *cobra.Command, _ []string) error {
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	svc, err := requireIngestion()
	if err != nil {
		return err
	}
	if err := buildChunks(cmd.Context(), cmd.OutOrStdout(), svc); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	watcher := textfile.NewWatcher(settings.Regulations, logger.Named("watch"))
	defer func() { _ = watcher.Close() }()

	changes, err := watcher.Watch(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Println("Watching regulation texts, press Ctrl+C to stop")
	return rebuildOnChange(cmd.Context(), cmd.OutOrStdout(), svc, changes, watchDebounce)
}

// rebuildOnChange rebuilds the chunk file after each burst of changes.
// A failed rebuild is reported and watching continues.
func rebuildOnChange(
	ctx context.Context, out io.Writer, svc driving.IngestionService,
	changes <-chan textfile.Change, debounce time.Duration,
) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "\n%s %s, rebuilding\n", change.Regulation.Abbr, change.Type)
			if !drain(ctx, changes, debounce) {
				return nil
			}
			if err := buildChunks(ctx, out, svc); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				fmt.Fprintf(out, "Rebuild failed: %v\n", err)
			}
		}
	}
}

// drain discards changes until none arrive for d. It returns false when
// ctx is done or the channel is closed.
func drain(ctx context.Context, changes <-chan textfile.Change, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-changes:
			if !ok {
				return false
			}
			timer.Reset(d)
		case <-timer.C:
			return true
		}
	}
}

func buildChunks(ctx context.Context, out io.Writer, svc driving.IngestionService) error {
	run, err := svc.BuildChunks(ctx)
	if err != nil {
		return err
	}
	printChunkRun(out, run)
	return nil
}

func printChunkRun(out io.Writer, run *domain.ChunkRun) {
	for _, reg := range run.Regulations {
		if reg.Skipped {
			fmt.Fprintf(out, "%-6s %s: skipped, text not found\n", reg.Abbr, reg.Name)
			continue
		}
		fmt.Fprintf(out, "%-6s %s: %d records, %d chunks\n", reg.Abbr, reg.Name, reg.Records, reg.Chunks)
	}
	fmt.Fprintf(out, "Wrote %d chunks to %s\n", len(run.Chunks), run.OutputPath)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	svc, err := requireIngestion()
	if err != nil {
		return err
	}
	report := svc.Validate(cmd.Context())
	cmd.Print(validator.Render(report))
	if !report.OK() {
		return fmt.Errorf("%w: %d validation errors", domain.ErrInvalidInput, report.ErrorCount)
	}
	return nil
}

func runClean(cmd *cobra.Command, _ []string) error {
	svc, err := requireIngestion()
	if err != nil {
		return err
	}
	report, err := svc.Clean(cmd.Context())
	if err != nil {
		return err
	}

	for _, w := range report.Warnings {
		cmd.Printf("Warning: %s\n", w)
	}
	cmd.Printf("Cleaned %d chunks (%d changed) -> %s\n", report.Chunks, report.Changed, report.OutputPath)
	if len(report.Abnormal) > 0 {
		cmd.Printf("Removed characters: %v\n", report.Abnormal)
	}
	return nil
}
