package cli

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"paperrag/internal/domain"
	"paperrag/internal/logger"
)

var addCmd = &cobra.Command{
	Use:   "add [files...]",
	Short: "Add papers to the index",
	Long: `Extracts the text of each file, splits it into overlapping word windows and
adds them to the index. The index is saved after every paper. A paper whose
name is already indexed is skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	svc, err := currentService()
	if err != nil {
		return err
	}
	for _, path := range args {
		logger.Section(filepath.Base(path))
		msg, err := svc.AddFile(cmd.Context(), path)
		if errors.Is(err, domain.ErrPaperExists) {
			cmd.Printf("Skipped %s: already indexed\n", path)
			continue
		}
		if err != nil {
			return err
		}
		cmd.Println(msg)
	}
	return nil
}
