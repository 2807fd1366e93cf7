package driven

import "context"

// CommandRunner executes external binaries.
// Implementations bound the wall-clock time of each call and kill the whole
// process tree when the context ends.
type CommandRunner interface {
	// Run executes name with args and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
