package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage library documents",
	Long:  `List, inspect, clear or delete library documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentClearCmd = &cobra.Command{
	Use:   "clear [doc-id]",
	Short: "Remove derived pages without re-deriving",
	Long: `Removes every derived page of a document. The document and its file are
kept; run "pagesmith derive" to build the pages again.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentClear,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document, its pages and its stored file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var addTitle string

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a file to the library and derive its pages",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var attachCmd = &cobra.Command{
	Use:   "attach [doc-id] [file]",
	Short: "Replace the file of a document and re-derive its pages",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttach,
}

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "document title (default: derived from the file name)")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentClearCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(attachCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := requirePages(); err != nil {
		return err
	}

	docs, err := pageService.ListDocuments(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents in the library.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title:  %s\n", docs[i].Title)
		cmd.Printf("    Status: %s (%d pages)\n", documentStatus(docs[i].Status), docs[i].PageCount)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if err := requirePages(); err != nil {
		return err
	}

	doc, err := pageService.Document(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	printDocument(cmd, doc)
	return nil
}

func runDocumentClear(cmd *cobra.Command, args []string) error {
	if err := requirePages(); err != nil {
		return err
	}

	if err := pageService.ClearPages(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to clear pages: %w", err)
	}

	cmd.Printf("Pages of document %s cleared.\n", args[0])
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if err := requirePages(); err != nil {
		return err
	}

	if err := pageService.DeleteDocument(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := requirePages(); err != nil {
		return err
	}

	doc, err := pageService.CreateDocument(commandContext(cmd), addTitle, args[0])
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	printDocument(cmd, doc)
	return nil
}

func runAttach(cmd *cobra.Command, args []string) error {
	if err := requirePages(); err != nil {
		return err
	}

	doc, err := pageService.AttachFile(commandContext(cmd), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to attach file: %w", err)
	}

	printDocument(cmd, doc)
	return nil
}

func printDocument(cmd *cobra.Command, doc *domain.Document) {
	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Kind:     %s\n", doc.Kind)
	cmd.Printf("  Status:   %s\n", documentStatus(doc.Status))
	cmd.Printf("  Pages:    %d\n", doc.PageCount)
	if doc.Strategy != "" {
		cmd.Printf("  Strategy: %s\n", doc.Strategy)
	}
	if doc.FilePath != "" {
		cmd.Printf("  File:     %s\n", doc.FilePath)
	}
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
}
