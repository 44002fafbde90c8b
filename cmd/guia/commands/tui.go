// ABOUTME: CLI command that opens the interactive terminal UI
// ABOUTME: Ingests the sources, then hands the engine to the Bubble Tea program
package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/harper/guia/internal/app"
	"github.com/harper/guia/internal/tui"
)

// NewTUICmd creates the tui command
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal UI for legislation questions",
		Long: `Open a full-screen terminal UI to ask questions about the Manaus
municipal tax legislation. Answers appear with the source excerpts used,
query terms highlighted. Press Esc or Ctrl-C to quit.`,
		Args: cobra.NoArgs,
		RunE: runTUI,
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := app.New(configPath, verbose, quiet)
	if err != nil {
		return err
	}
	defer a.Close()

	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Indexando %d fonte(s)...\n", len(a.Config.Sources))
	}
	engine, stats, err := a.BuildEngine(cmd.Context())
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("%d trechos de %d páginas | modelo %s | top-%d",
		stats.Chunks, stats.Documents, a.Config.ChatModel, a.Config.TopK)
	model := tui.New(engine, summary, a.Config.Timeout)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
