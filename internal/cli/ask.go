package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"paperrag/internal/domain"
	"paperrag/internal/generate"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed papers",
	Long: `Retrieves the passages most relevant to the question and asks the configured
generator for an answer with [Paper Name, Page X] citations.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, err := currentService()
	if err != nil {
		return err
	}
	ans, err := svc.Ask(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNoGenerator) {
		return fmt.Errorf("%w: set generator.type in the config, or use 'paperrag search'", err)
	}
	if err != nil {
		return err
	}
	cmd.Println(ans.Text)
	if len(ans.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, s := range ans.Sources {
			cmd.Printf("  [Source %d] %s (%.3f)\n", i+1, generate.Citation(s.Chunk), s.Score)
		}
	}
	return nil
}
