// =============================================================================
// Clarity to CSV - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Clarity to CSV CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   clarity export <detail.xml>  - Export one contest as a precinct table
//   clarity contests <detail.xml> - List the contests in a detail report
//   clarity process              - Export every race in the configuration
//   clarity analyze <table>      - Compute turnout and vote shares
//   clarity version              - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//   - configs/       : Contains example race configurations
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/clarity-to-csv/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
