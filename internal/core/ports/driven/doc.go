// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Strategy: Pulls text out of one file kind with one technique
//   - DocumentStore: Document persistence
//   - PageStore: Page persistence with atomic replacement
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CommandRunner: Runs external binaries. Without it, every strategy that
//     depends on the office suite or OCR tools is left unregistered.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
