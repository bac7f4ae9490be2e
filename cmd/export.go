// =============================================================================
// Clarity to CSV - Export Command
// =============================================================================
//
// This file defines the 'export' command, which compiles one contest of a
// detail XML report into a precinct table.
//
// COMMAND USAGE:
//   clarity export <detail.xml> [flags]
//
// FLAGS:
//   --contest-key : Key of the contest to export
//   --choice-key  : Key of a choice in the contest to export
//   --output, -o  : Output path (defaults to stdout)
//   --format      : csv or xlsx (defaults to the output extension, else csv)
//
// At least one of --contest-key and --choice-key is required. With only a
// choice key, the contest containing that choice is exported; the command
// fails if more than one contest contains it.
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
	"github.com/ginjaninja78/clarity-to-csv/internal/converter"
	"github.com/ginjaninja78/clarity-to-csv/internal/tablewriter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	exportContestKey string
	exportChoiceKey  string
	exportOutput     string
	exportFormat     string
)

// =============================================================================
// EXPORT COMMAND DEFINITION
// =============================================================================

var exportCmd = &cobra.Command{
	Use:   "export <detail.xml>",
	Short: "Export one contest as a precinct-level table",
	Long: `The export command reads a Clarity detail XML report, finds one contest
and writes a table with one row per precinct:

  precinct_id, registered_voters, contest_name, total_votes_cast,
  <candidate> - <vote type>, ...

Precincts keep the order they first appear in the report. Registration and
ballots cast come from the report's turnout section and are left empty for
precincts it does not list. Malformed vote counts are recovered as 0 and
reported as warnings.`,
	Args: withUsage(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportContestKey, "contest-key", "", "Key of the contest to export")
	exportCmd.Flags().StringVar(&exportChoiceKey, "choice-key", "", "Key of a choice in the contest to export")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path (defaults to stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: csv or xlsx")
}

// runExport validates the flags and runs a single export.
func runExport(cmd *cobra.Command, xmlPath string) error {
	selector := clarity.Selector{ContestKey: exportContestKey, ChoiceKey: exportChoiceKey}
	if selector.IsZero() {
		return &usageError{err: clarity.ErrNoSelector}
	}

	format, err := exportOutputFormat()
	if err != nil {
		return &usageError{err: err}
	}

	result := converter.New(xmlPath, converter.Options{
		Name:       xmlPath,
		Selector:   selector,
		OutputPath: exportOutput,
		Format:     format,
		Stdout:     cmd.OutOrStdout(),
	}, logger).Run()

	if !result.Success {
		return result.Error
	}
	logger.Debug("export finished",
		"precincts", result.Stats.Precincts,
		"columns", result.Stats.Columns,
		"elapsed", result.Stats.ProcessingTime,
	)
	return nil
}

// exportOutputFormat resolves --format, falling back to the output
// extension.
func exportOutputFormat() (tablewriter.Format, error) {
	if exportFormat != "" {
		return tablewriter.ParseFormat(exportFormat)
	}
	return tablewriter.FormatForPath(exportOutput, tablewriter.FormatCSV), nil
}
