package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paperrag/internal/domain"
	"paperrag/internal/generate"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed papers",
	Long: `Ranks indexed passages by TF-IDF cosine similarity to the query.
Passages at or below the similarity threshold are not shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default index.top_k)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, err := currentService()
	if err != nil {
		return err
	}
	limit := searchLimit
	if limit <= 0 {
		limit = defaultTopK()
	}
	results := svc.Retrieve(args[0], limit)
	if searchJSON {
		return outputJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}
	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, generate.Citation(r.Chunk), r.Score)
		cmd.Printf("      %s\n", snippet(r.Chunk.Text, 30))
		cmd.Println()
	}
}

// snippet returns the first n words of text.
func snippet(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " ..."
}
