package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/regula/internal/adapters/driving/tui"
	"github.com/custodia-labs/regula/internal/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Ask questions in an interactive terminal UI",
	Long: `Open the terminal UI. Type a question, press enter, and browse the
cited articles with j/k. n starts a new question, ctrl+p and ctrl+n recall
earlier ones, esc goes back and ctrl+c quits.

The settings screen edits the retrieval and model keys in place; the new
values apply the next time regula starts.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	ask, err := requireAsk()
	if err != nil {
		return err
	}
	settings, err := requireSettingsService()
	if err != nil {
		return err
	}
	if err := warmMemoryIndex(cmd); err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{Ask: ask, Settings: settings})
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Debug("tui panic stack:\n%s", debug.Stack())
			err = fmt.Errorf("tui crashed: %v", r)
		}
	}()
	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
