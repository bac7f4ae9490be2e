// =============================================================================
// Clarity to CSV - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version, build information and what this build can read and write.
//
// COMMAND USAGE:
//   clarity version
//
// OUTPUT:
//   Clarity to CSV
//   Version:    1.0.0
//   Build Date: 2024-11-06
//   Go Version: go1.24.11 (linux/amd64)
//   Formats:    csv, xlsx
//   Config:     clarity.yaml (not found)
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/clarity-to-csv/internal/tablewriter"
	"github.com/ginjaninja78/clarity-to-csv/pkg/utils"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/clarity-to-csv/cmd.Version=1.0.0' \
//     -X 'github.com/ginjaninja78/clarity-to-csv/cmd.BuildDate=2024-11-06'"

// Version is the application version.
// Set at build time using ldflags.
var Version = "1.0.0"

// BuildDate is the date the application was built.
// Set at build time using ldflags.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long: `Display the application version, build date, Go runtime, the output
formats this build writes and the configuration file it would load.`,
	Args: withUsage(cobra.NoArgs),
	Run: func(cmd *cobra.Command, args []string) {
		writeVersion(cmd.OutOrStdout())
	},
}

// writeVersion prints the version report.
func writeVersion(w io.Writer) {
	configPath := cfgFile
	if !utils.FileExists(configPath) {
		configPath += " (not found)"
	}

	fmt.Fprintln(w, "Clarity to CSV")
	fmt.Fprintf(w, "Version:    %s\n", Version)
	fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(w, "Go Version: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "Formats:    %s, %s\n", tablewriter.FormatCSV, tablewriter.FormatXLSX)
	fmt.Fprintf(w, "Config:     %s\n", configPath)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
