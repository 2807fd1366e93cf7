// Package cli provides the pagesmith command line interface.
//
// Commands reach the core only through the driving ports. The services
// behind them are assembled by a Builder once the global flags are parsed,
// so --config and --data take effect before anything is opened.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudstore/pagesmith/internal/core/ports/driving"
	"github.com/cloudstore/pagesmith/internal/logger"
)

// version is set at build time.
var version = "dev"

// Options carries the global flags to the Builder.
type Options struct {
	ConfigDir string
	DataDir   string
	Verbose   bool

	// SettingsOnly asks for the settings service alone. Storage is not
	// opened, so a broken storage setting can still be corrected.
	SettingsOnly bool
}

// Services holds the driving ports used by the commands.
type Services struct {
	Pages    driving.PageService
	Jobs     driving.JobService
	Import   driving.ImportService
	Settings driving.SettingsService

	// ExtractRoot is the directory extract_text may read from over MCP.
	ExtractRoot string

	// Close releases storage and other resources. May be nil.
	Close func() error
}

// Builder assembles the services for one invocation.
type Builder func(ctx context.Context, opts Options) (*Services, error)

const (
	// noServices marks commands that run without the core services.
	noServices = "pagesmith/no-services"

	// settingsOnly marks commands that need only the settings service.
	settingsOnly = "pagesmith/settings-only"
)

var (
	verbose   bool
	configDir string
	dataDir   string

	builder         Builder
	pageService     driving.PageService
	jobService      driving.JobService
	importService   driving.ImportService
	settingsService driving.SettingsService
	extractRoot     string
	closeFn         func() error
)

var rootCmd = &cobra.Command{
	Use:   "pagesmith",
	Short: "Extract text from documents and split it into pages",
	Long: `pagesmith keeps a library of documents and derives readable pages from
their files. PDF, Word, OpenDocument, RTF, spreadsheet, presentation and
plain text files are supported; formats that need LibreOffice or Tesseract
are handled when those programs are installed.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print extraction details to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.pagesmith)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default ~/.pagesmith/data)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with services from b.
func Execute(ctx context.Context, b Builder) error {
	builder = b
	defer closeServices()
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if builder == nil || cmd.Annotations[noServices] == "true" {
		return nil
	}

	svc, err := builder(cmd.Context(), Options{
		ConfigDir:    configDir,
		DataDir:      dataDir,
		Verbose:      verbose,
		SettingsOnly: cmd.Annotations[settingsOnly] == "true",
	})
	if err != nil {
		return err
	}
	pageService = svc.Pages
	jobService = svc.Jobs
	importService = svc.Import
	settingsService = svc.Settings
	extractRoot = svc.ExtractRoot
	closeFn = svc.Close
	return nil
}

func closeServices() {
	if closeFn == nil {
		return
	}
	if err := closeFn(); err != nil {
		logger.Error("closing services: %v", err)
	}
	closeFn = nil
}

func requirePages() error {
	if pageService == nil {
		return errors.New("page service not configured")
	}
	return nil
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

// commandContext returns the command's context, which is nil when a test
// calls a run function directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
