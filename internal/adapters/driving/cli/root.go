// Package cli provides the regula command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/regula/internal/logger"
)

// version is set by Execute from the build.
var version = "dev"

// Persistent flags.
var (
	configPath string
	verbose    bool
	inMemory   bool
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "regula",
	Short: "Building-code question answering",
	Long: `regula answers questions about Chinese building codes.

It normalises regulation texts, splits them into article chunks, embeds
the chunks into a vector index and answers questions with cited articles.

Typical workflow:
  regula normalize raw.txt data/sslg.txt
  regula chunk
  regula validate
  regula index
  regula ask "宿舍居室的净高有什么要求？"`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.regula/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "use a process-local vector index")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file holding DASHSCOPE_API_KEY")
}

func preRun(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	return nil
}

// Execute runs the root command and releases the services it opened.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	defer closeServices()
	defer logger.Sync()
	return rootCmd.ExecuteContext(ctx)
}
