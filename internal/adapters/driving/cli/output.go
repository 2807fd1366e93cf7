package cli

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

var (
	okColor   = color.New(color.FgGreen).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()
	failColor = color.New(color.FgRed).SprintFunc()
	dimColor  = color.New(color.Faint).SprintFunc()
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newProgress returns a progress bar on w, or nil when w is not a terminal.
// A nil bar is safe to pass to step.
func newProgress(w io.Writer, total int, description string) *progressbar.ProgressBar {
	if total <= 0 || !isTerminal(w) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
}

func step(bar *progressbar.ProgressBar) {
	if bar != nil {
		bar.Add(1) //nolint:errcheck // rendering only
	}
}

func finish(bar *progressbar.ProgressBar) {
	if bar != nil {
		bar.Finish() //nolint:errcheck // rendering only
	}
}

func documentStatus(s domain.DocumentStatus) string {
	switch s {
	case domain.StatusPagesDerived:
		return okColor(string(s))
	case domain.StatusNoText:
		return failColor(string(s))
	case domain.StatusPending:
		return warnColor(string(s))
	default:
		return dimColor(string(s))
	}
}

func importStatus(s domain.ImportStatus) string {
	switch s {
	case domain.ImportCreated, domain.ImportDerived:
		return okColor(string(s))
	case domain.ImportSkipped:
		return dimColor(string(s))
	case domain.ImportRejected:
		return warnColor(string(s))
	default:
		return failColor(string(s))
	}
}

func jobStatus(s domain.JobStatus) string {
	switch s {
	case domain.JobSucceeded:
		return okColor(string(s))
	case domain.JobFailed:
		return failColor(string(s))
	default:
		return warnColor(string(s))
	}
}
