// Package cli constructs the gits command-line interface.
//
// Application wires the Cobra root command to the configuration loader, the
// zap diagnostic logger, repository discovery, and the fan-out orchestrator.
// Everything after the first positional argument is passed to the executed
// command untouched.
package cli
