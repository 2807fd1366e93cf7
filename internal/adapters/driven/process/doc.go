// Package process runs external binaries for the extraction strategies.
//
// Runner bounds every call with a wall-clock timeout and, on Unix, places
// the child in its own process group so that a timeout or cancellation
// kills the whole tree (office suites fork helper processes that would
// otherwise outlive the parent). Throttled limits launch rate.
// LocateBinary implements the fixed candidate-path probe used at startup.
package process
