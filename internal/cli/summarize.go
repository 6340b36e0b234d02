package cli

import (
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [paper]",
	Short: "Summarize an indexed paper",
	Long: `Summarizes a paper from its first passages. With a generator configured the
summary covers objective, method, findings, contributions and limitations;
otherwise the most representative sentences are extracted.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	svc, err := currentService()
	if err != nil {
		return err
	}
	out, err := svc.Summarize(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cmd.Println(out)
	return nil
}
