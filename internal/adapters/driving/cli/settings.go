package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the models, retrieval parameters and file locations.

The API key is never stored in the config file; it is read from the
DASHSCOPE_API_KEY environment variable or a .env file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key",
	Long: `Set a single configuration key and save the config file.

Run 'regula settings keys' to list the accepted keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check provider connectivity",
	Long:  `Ping the embedding and generation models with the configured API key.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Config: %s\n\n", svc.ConfigPath())
	printSettings(cmd.OutOrStdout(), settings)
	return nil
}

func printSettings(out io.Writer, s *domain.Settings) {
	fmt.Fprintln(out, "[Models]")
	fmt.Fprintf(out, "  Embedding:  %s (%d dimensions)\n", s.Models.EmbeddingModel, s.Models.EmbeddingDimension)
	fmt.Fprintf(out, "  Generation: %s\n", s.Models.GenerationModel)
	fmt.Fprintf(out, "  Temperature: expand %.2f, answer %.2f\n", s.Models.QueryExpandTemperature, s.Models.AnswerTemperature)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[Provider]")
	fmt.Fprintf(out, "  Base URL: %s\n", s.Provider.BaseURL)
	if s.Provider.APIKey != "" {
		fmt.Fprintf(out, "  API Key:  %s\n", maskAPIKey(s.Provider.APIKey))
	} else {
		fmt.Fprintf(out, "  API Key:  (not set, export %s)\n", services.APIKeyEnv)
	}
	fmt.Fprintf(out, "  Timeout:  %s\n", s.Provider.Timeout)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[Retrieval]")
	fmt.Fprintf(out, "  Nearest neighbours:   %d\n", s.Retrieval.NResults)
	fmt.Fprintf(out, "  Top K:                %d\n", s.Retrieval.TopK)
	fmt.Fprintf(out, "  Similarity threshold: %.2f\n", s.Retrieval.SimilarityThreshold)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[Ingest]")
	fmt.Fprintf(out, "  Max chunk length: %d\n", s.Ingest.MaxChunkLength)
	fmt.Fprintf(out, "  Batch size:       %d\n", s.Ingest.BatchSize)
	fmt.Fprintf(out, "  Chunks:           %s\n", s.Ingest.ChunksPath)
	fmt.Fprintf(out, "  Cleaned:          %s\n", s.Ingest.CleanedPath)
	fmt.Fprintf(out, "  Failed chunks:    %s\n", s.Ingest.FailedChunksPath)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[Regulations]")
	for _, reg := range s.Regulations {
		fmt.Fprintf(out, "  %-6s %s (%s)\n", reg.Abbr, reg.Name, reg.Path)
	}
	fmt.Fprintln(out)

	if len(s.ChapterTitles) > 0 {
		fmt.Fprintln(out, "[Chapter titles]")
		keys := make([]string, 0, len(s.ChapterTitles))
		for k := range s.ChapterTitles {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s: %s\n", k, s.ChapterTitles[k])
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "[Runtime]")
	fmt.Fprintf(out, "  Server:      %s\n", s.ServerAddr)
	fmt.Fprintf(out, "  Ask timeout: %s\n", s.AskTimeout)
	fmt.Fprintf(out, "  Data dir:    %s\n", s.DataDir)
	if s.Cache.RedisURL != "" {
		fmt.Fprintf(out, "  Redis cache: %s\n", s.Cache.RedisURL)
	}
	fmt.Fprintf(out, "  Cache:       %d entries, ttl %s\n", s.Cache.Size, s.Cache.TTL)
	fmt.Fprintf(out, "  Retry:       %d attempts, %s-%s\n", s.Retry.MaxAttempts, s.Retry.MinWait, s.Retry.MaxWait)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}
	if err := svc.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}
	for _, k := range svc.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := checkProviders(ctx); err != nil {
		return err
	}
	cmd.Println("Embedding and generation models are reachable.")
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
