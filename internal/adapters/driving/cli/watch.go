package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloudstore/pagesmith/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Import files dropped into a directory",
	Long: `Watches a directory and imports every supported file that appears in it.
Pages are derived in the background by the job queue. A file that changes
again is re-attached to its document. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requirePages(); err != nil {
		return err
	}
	if jobService == nil {
		return fmt.Errorf("job service not configured")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := jobService.Start(ctx); err != nil {
		return fmt.Errorf("starting job queue: %w", err)
	}
	defer jobService.Stop() //nolint:errcheck

	out := cmd.OutOrStdout()
	w := watch.New(args[0], pageService, jobService, watch.WithNotify(func(ev watch.Event) {
		switch ev.Action {
		case watch.ActionQueued:
			fmt.Fprintf(out, "%s %s -> %s (job %s)\n", okColor("queued"), ev.Path, ev.DocumentID, ev.JobID)
		case watch.ActionAttached:
			fmt.Fprintf(out, "%s %s -> %s\n", okColor("updated"), ev.Path, ev.DocumentID)
		default:
			fmt.Fprintf(out, "%s %s: %v\n", failColor("failed"), ev.Path, ev.Err)
		}
	}))
	defer w.Close() //nolint:errcheck

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(ctx)
}
