package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

var (
	pageNumber int
	extractAs  string
)

var pagesCmd = &cobra.Command{
	Use:   "pages [doc-id]",
	Short: "Print the derived pages of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runPages,
}

var deriveAll bool

var deriveCmd = &cobra.Command{
	Use:   "derive [doc-id]",
	Short: "Re-derive pages from the stored file",
	Long: `Re-derives the pages of one document from its stored file.
With --all, every document that has a file is re-derived.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if deriveAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runDerive,
}

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the full text of a file without storing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var sniffCmd = &cobra.Command{
	Use:         "sniff [file...]",
	Short:       "Print the detected format of files",
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{noServices: "true"},
	Run:         runSniff,
}

func init() {
	pagesCmd.Flags().IntVarP(&pageNumber, "page", "p", 0, "print only this page")
	deriveCmd.Flags().BoolVar(&deriveAll, "all", false, "re-derive every document")
	extractCmd.Flags().StringVarP(&extractAs, "kind", "k", "", "format override (pdf, docx, doc, txt, odt, rtf, spreadsheet, presentation)")

	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(sniffCmd)
}

func runPages(cmd *cobra.Command, args []string) error {
	if err := requirePages(); err != nil {
		return err
	}
	ctx := commandContext(cmd)
	docID := args[0]

	if pageNumber > 0 {
		page, err := pageService.Page(ctx, docID, pageNumber)
		if err != nil {
			return fmt.Errorf("failed to get page %d: %w", pageNumber, err)
		}
		cmd.Print(page.Text)
		if !strings.HasSuffix(page.Text, "\n") {
			cmd.Println()
		}
		return nil
	}

	pages, err := pageService.Pages(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get pages: %w", err)
	}
	if len(pages) == 0 {
		cmd.Println("No pages.")
		return nil
	}

	for i := range pages {
		cmd.Println(dimColor(fmt.Sprintf("── page %d/%d ──", pages[i].Number, len(pages))))
		cmd.Print(pages[i].Text)
		if !strings.HasSuffix(pages[i].Text, "\n") {
			cmd.Println()
		}
	}
	return nil
}

func runDerive(cmd *cobra.Command, args []string) error {
	if err := requirePages(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if deriveAll {
		return deriveEverything(cmd)
	}

	pages, err := pageService.Rederive(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to derive pages: %w", err)
	}
	doc, err := pageService.Document(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document %s: %s, %d pages", doc.ID, documentStatus(doc.Status), len(pages))
	if doc.Strategy != "" {
		cmd.Printf(" via %s", doc.Strategy)
	}
	cmd.Println()
	return nil
}

func deriveEverything(cmd *cobra.Command) error {
	if importService == nil {
		return fmt.Errorf("import service not configured")
	}
	ctx := commandContext(cmd)

	docs, err := pageService.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	withFile := 0
	for i := range docs {
		if docs[i].HasFile() {
			withFile++
		}
	}

	bar := newProgress(cmd.ErrOrStderr(), withFile, "Deriving")
	results, err := importService.RederiveAll(ctx, func(domain.ImportResult) { step(bar) })
	finish(bar)
	if err != nil {
		return fmt.Errorf("failed to derive pages: %w", err)
	}

	printImportResults(cmd, results)
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := requirePages(); err != nil {
		return err
	}

	kind := domain.Sniff(args[0])
	if extractAs != "" {
		k, ok := domain.ParseKind(extractAs)
		if !ok {
			return fmt.Errorf("unknown kind %q", extractAs)
		}
		kind = k
	}

	text, err := pageService.ExtractFullText(commandContext(cmd), args[0], kind)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	cmd.Println(text)
	return nil
}

func runSniff(cmd *cobra.Command, args []string) {
	for _, path := range args {
		cmd.Printf("%s\t%s\n", path, domain.Sniff(path))
	}
}
