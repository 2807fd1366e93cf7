package cli

import (
	"github.com/spf13/cobra"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "List extraction strategies per format",
	Long: `Lists the extraction strategies registered for each format in the order
they are tried, followed by strategies that could not be registered on this
machine and the reason.`,
	Args: cobra.NoArgs,
	RunE: runCapabilities,
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}

func runCapabilities(cmd *cobra.Command, _ []string) error {
	if err := requirePages(); err != nil {
		return err
	}

	caps := pageService.Capabilities()
	if len(caps) == 0 {
		cmd.Println("No extraction strategies registered.")
		return nil
	}

	cmd.Println("Available:")
	for _, c := range caps {
		if c.Available {
			cmd.Printf("  %-13s %d. %-16s %s\n", c.Kind, c.Priority, c.Strategy, dimColor(c.Method.String()))
		}
	}

	missing := false
	for _, c := range caps {
		if c.Available {
			continue
		}
		if !missing {
			cmd.Println()
			cmd.Println("Unavailable:")
			missing = true
		}
		cmd.Printf("  %-13s %-19s %s\n", c.Kind, c.Strategy, warnColor(c.Reason))
	}
	return nil
}
