// =============================================================================
// Clarity to CSV - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (clarity)
//   ├── exportCmd   (clarity export)    one contest to CSV/XLSX
//   ├── contestsCmd (clarity contests)  list contests in a detail report
//   ├── processCmd  (clarity process)   every configured race
//   ├── analyzeCmd  (clarity analyze)   turnout and candidate shares
//   └── versionCmd  (clarity version)
//
// The root command sets up global flags and logging. Logs go to stderr so a
// table written to stdout stays clean.
//
// EXIT CODES:
//   0 success
//   1 the detail report could not be read, or any other failure
//   2 the contest could not be located, or the command line was invalid
//   3 the contest has no choices
//   4 the contest has no vote type data
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/clarity-to-csv/internal/config"
	"github.com/ginjaninja78/clarity-to-csv/internal/converter"
	"github.com/ginjaninja78/clarity-to-csv/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logFormat selects console or JSON log lines.
var logFormat string

// logger is created before any command runs.
var logger = logging.NewNop()

// runID identifies this invocation in every log line.
var runID string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "clarity",
	Short: "Clarity to CSV - Flatten Clarity election detail reports into precinct tables",
	Long: `Clarity to CSV reads a Clarity-style election detail XML report and
compiles one contest into a flat precinct-level table: one row per precinct,
turnout metadata, and one column per candidate and vote type.

Example Usage:
  clarity export detail.xml --contest-key 12               # CSV to stdout
  clarity export detail.xml --choice-key 44 -o sheriff.csv
  clarity contests detail.xml                              # find a contest key
  clarity process --config clarity.yaml                    # every configured race
  clarity analyze sheriff.csv --candidate-a Smith --candidate-b Jones`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		return initLogger(level)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// initLogger replaces the package logger.
func initLogger(level string) error {
	if runID == "" {
		runID = logging.NewRunID()
	}
	l, err := logging.New(logging.Options{Level: level, Format: logFormat})
	if err != nil {
		return usageErrorf("%v", err)
	}
	logger.Sync()
	logger = l.With("run_id", runID)
	return nil
}

// loadConfig loads the configuration file. When verbose is off, the
// configured log level replaces the default one.
func loadConfig() (*config.Config, bool, error) {
	cfg, exists, err := config.Load(cfgFile)
	if err != nil {
		return nil, exists, err
	}
	if !verbose && exists {
		if err := initLogger(cfg.Settings.LogLevel); err != nil {
			return nil, exists, err
		}
	}
	if exists {
		logger.Debug("loaded configuration", "path", cfgFile, "races", len(cfg.Races()))
	}
	return cfg, exists, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// usageError marks an invalid command line.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// withUsage turns argument validation failures into usage errors.
func withUsage(args cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := args(cmd, a); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	var usage *usageError
	if errors.As(err, &usage) {
		return converter.ExitLocate
	}
	return converter.ExitCode(err)
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command and exits with the matching code on error.
// This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	// --config flag: Path to the race configuration (.yaml, .yml or .toml).
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"clarity.yaml",
		"Path to the configuration file (.yaml or .toml)",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	// --log-format flag: console or json.
	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		logging.FormatConsole,
		"Log format: console or json",
	)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}
