package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

var importCmd = &cobra.Command{
	Use:   "import [archive.zip | file...]",
	Short: "Import a ZIP archive or several files",
	Long: `Creates one document per supported file and derives its pages.
A single .zip argument is unpacked first; entries of unsupported formats are
skipped and entries that are too large or escape the archive are rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return fmt.Errorf("import service not configured")
	}
	ctx := commandContext(cmd)

	var (
		results []domain.ImportResult
		err     error
	)
	if len(args) == 1 && strings.EqualFold(filepath.Ext(args[0]), ".zip") {
		// The entry count is unknown until the archive is opened.
		results, err = importService.ImportArchive(ctx, args[0], func(r domain.ImportResult) {
			if isTerminal(cmd.ErrOrStderr()) {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s\n", importStatus(r.Status), r.Name)
			}
		})
	} else {
		bar := newProgress(cmd.ErrOrStderr(), len(args), "Importing")
		results, err = importService.ImportFiles(ctx, args, func(domain.ImportResult) { step(bar) })
		finish(bar)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	printImportResults(cmd, results)
	return nil
}

func printImportResults(cmd *cobra.Command, results []domain.ImportResult) {
	counts := make(map[domain.ImportStatus]int)
	for _, r := range results {
		counts[r.Status]++
		line := fmt.Sprintf("  %-8s %s", importStatus(r.Status), r.Name)
		if r.DocumentID != "" {
			line += fmt.Sprintf(" (%s, %d pages)", r.DocumentID, r.PageCount)
		}
		if r.Message != "" {
			line += ": " + r.Message
		}
		cmd.Println(line)
	}

	cmd.Println()
	cmd.Printf("Total: %d files", len(results))
	for _, s := range []domain.ImportStatus{
		domain.ImportCreated, domain.ImportDerived, domain.ImportSkipped,
		domain.ImportRejected, domain.ImportFailed,
	} {
		if counts[s] > 0 {
			cmd.Printf(", %d %s", counts[s], s)
		}
	}
	cmd.Println()
}
