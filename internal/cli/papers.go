package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var papersJSON bool

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List indexed papers",
	Args:  cobra.NoArgs,
	RunE:  runPapers,
}

func init() {
	papersCmd.Flags().BoolVar(&papersJSON, "json", false, "output papers as JSON")
	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, _ []string) error {
	svc, err := currentService()
	if err != nil {
		return err
	}
	papers, err := svc.Papers(cmd.Context())
	if err != nil {
		return err
	}
	if papersJSON {
		return outputJSON(cmd, papers)
	}
	if len(papers) == 0 {
		cmd.Println("No papers indexed.")
		return nil
	}
	for _, p := range papers {
		cmd.Printf("  %-40s %5d chunks  added %s\n", p.Name, p.Chunks, p.AddedAt.Local().Format(time.DateTime))
	}
	return nil
}
