package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search derived pages",
	Long: `Finds pages whose text contains the query, ignoring case, and prints a
snippet around the first match on each page.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requirePages(); err != nil {
		return err
	}

	hits, err := pageService.SearchPages(commandContext(cmd), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}
	return outputSearchTable(cmd, hits)
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.PageHit) error {
	type hit struct {
		DocumentID string `json:"document_id"`
		Title      string `json:"title"`
		Page       int    `json:"page"`
		Position   int    `json:"position"`
		Snippet    string `json:"snippet"`
	}
	out := make([]hit, len(hits))
	for i := range hits {
		out[i] = hit{
			DocumentID: hits[i].DocumentID,
			Title:      hits[i].DocumentTitle,
			Page:       hits[i].PageNumber,
			Position:   hits[i].Position,
			Snippet:    hits[i].Snippet,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, hits []domain.PageHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		title := hits[i].DocumentTitle
		if title == "" {
			title = hits[i].DocumentID
		}
		cmd.Printf("[%d] %s, page %d\n", i+1, title, hits[i].PageNumber)
		cmd.Printf("    %s\n", hits[i].Snippet)
		cmd.Printf("    %s\n\n", dimColor(hits[i].DocumentID))
	}
	return nil
}
