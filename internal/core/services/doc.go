// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The extraction cascade, page derivation, the background job queue and
// bulk import live here. External programs are reached only through the
// driven.Strategy and driven.CommandRunner ports.
package services
