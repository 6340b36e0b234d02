package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"paperrag/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive paper search screen.

Controls:
  Enter    - Search / Ask
  Tab      - Switch between search and ask
  ↑/↓      - Navigate results
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tui requires an interactive terminal")
	}
	svc, err := currentService()
	if err != nil {
		return err
	}
	papers, chunks := svc.Stats()
	summary := fmt.Sprintf("%d papers, %d chunks indexed", papers, chunks)

	m := tui.New(cmd.Context(), svc, defaultTopK(), summary)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
