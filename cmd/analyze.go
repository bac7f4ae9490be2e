// =============================================================================
// Clarity to CSV - Analyze Command
// =============================================================================
//
// This file defines the 'analyze' command, which derives turnout and
// head-to-head vote shares per precinct from an exported table.
//
// COMMAND USAGE:
//   clarity analyze <table.csv|table.xlsx> --candidate-a A --candidate-b B
//   clarity analyze --race election/race
//
// With --race, the table path and columns come from the configuration file.
// Explicit flags override the configured columns.
//
// OUTPUT:
//   A table with one row per kept precinct: registration, total, both
//   candidates' votes, turnout_percent and each candidate's share. Written
//   to stdout as a table, or with --output as CSV/XLSX with plain decimals.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/clarity-to-csv/internal/analysis"
	"github.com/ginjaninja78/clarity-to-csv/internal/csvparser"
	"github.com/ginjaninja78/clarity-to-csv/internal/tablewriter"
	"github.com/ginjaninja78/clarity-to-csv/internal/types"
	"github.com/ginjaninja78/clarity-to-csv/internal/xlsxparser"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	analyzeRace         string
	analyzeCandidateA   string
	analyzeCandidateB   string
	analyzeTotal        string
	analyzeRegistration string
	analyzeSheet        string
	analyzeDelimiter    string
	analyzeOutput       string
	analyzeMinReg       float64
	analyzeMinTotal     float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [table.csv|table.xlsx]",
	Short: "Compute turnout and candidate vote shares per precinct",
	Long: `The analyze command reads an exported precinct table and computes, for
two candidates, each precinct's turnout (total / registered) and each
candidate's share of the total.

A candidate name matches a column exactly or, in an exported table, stands
for the sum of its "<candidate> - <vote type>" columns. Precincts with
missing or non-positive registration or totals are dropped, as are those
below --min-registered or --min-total.`,
	Args: withUsage(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		return runAnalyze(cmd, path)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	flags := analyzeCmd.Flags()
	flags.StringVar(&analyzeRace, "race", "", "Configured race to analyze (election/race)")
	flags.StringVar(&analyzeCandidateA, "candidate-a", "", "First candidate column")
	flags.StringVar(&analyzeCandidateB, "candidate-b", "", "Second candidate column")
	flags.StringVar(&analyzeTotal, "total-column", "", "Total votes column (default total_votes_cast)")
	flags.StringVar(&analyzeRegistration, "registration-column", "", "Registered voters column (default registered_voters)")
	flags.StringVar(&analyzeSheet, "sheet", "", "Worksheet to read from an XLSX table")
	flags.StringVar(&analyzeDelimiter, "delimiter", "", "CSV delimiter: comma, tab, pipe or semicolon")
	flags.StringVarP(&analyzeOutput, "output", "o", "", "Write the derived table to this CSV or XLSX file")
	flags.Float64Var(&analyzeMinReg, "min-registered", 0, "Drop precincts with fewer registered voters")
	flags.Float64Var(&analyzeMinTotal, "min-total", 0, "Drop precincts with fewer total votes")
}

// runAnalyze resolves the inputs, computes the stats and prints them.
func runAnalyze(cmd *cobra.Command, path string) error {
	params, path, err := analyzeParams(cmd, path)
	if err != nil {
		return err
	}

	table, err := readTable(path)
	if err != nil {
		return err
	}
	logger.Debug("read table", "path", path, "rows", len(table.Rows), "columns", len(table.Header))

	result, err := analysis.VoterStats(table, params)
	if err != nil {
		return err
	}
	for _, reason := range result.DropReasons() {
		logger.Info("dropped precincts", "reason", string(reason), "count", result.Dropped[reason])
	}

	if analyzeOutput != "" {
		format := tablewriter.FormatForPath(analyzeOutput, tablewriter.FormatCSV)
		if err := tablewriter.WriteFile(analyzeOutput, result.Table(), format); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logger.Info("wrote derived table", "output", analyzeOutput, "precincts", len(result.Rows))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(result.Header(), statsRows(result)))
	summary := result.Summary()
	fmt.Fprintf(out, "%s precincts kept, %s dropped. Turnout %s. %s %s, %s %s.\n",
		count(summary.Precincts),
		count(result.DroppedTotal()),
		percent(summary.Turnout()),
		params.CandidateA, percent(summary.ShareA()),
		params.CandidateB, percent(summary.ShareB()),
	)
	return nil
}

// analyzeParams merges the configured race, if any, with the flags.
func analyzeParams(cmd *cobra.Command, path string) (analysis.Params, string, error) {
	params := analysis.Params{
		RegistrationColumn:  types.ColumnRegisteredVoters,
		TotalColumn:         types.ColumnTotalVotesCast,
		MinRegisteredVoters: analyzeMinReg,
		MinTotalVotes:       analyzeMinTotal,
	}

	if analyzeRace != "" {
		cfg, exists, err := loadConfig()
		if err != nil {
			return params, "", err
		}
		if !exists {
			return params, "", fmt.Errorf("configuration file %s not found", cfgFile)
		}
		entry, err := cfg.Race(analyzeRace)
		if err != nil {
			return params, "", &usageError{err: err}
		}
		race := entry.Race
		params.CandidateA = race.CandidateAColumn
		params.CandidateB = race.CandidateBColumn
		params.TotalColumn = race.TotalColumn
		params.RegistrationColumn = race.RegistrationColumn
		if !cmd.Flags().Changed("min-registered") {
			params.MinRegisteredVoters = cfg.Settings.MinRegisteredVoters
		}
		if !cmd.Flags().Changed("min-total") {
			params.MinTotalVotes = cfg.Settings.MinTotalVotes
		}
		if path == "" {
			if path, err = cfg.TablePath(entry); err != nil {
				return params, "", err
			}
		}
		logger.Info("analyzing race", "race", entry.Ref(), "table", path)
	}

	if analyzeCandidateA != "" {
		params.CandidateA = analyzeCandidateA
	}
	if analyzeCandidateB != "" {
		params.CandidateB = analyzeCandidateB
	}
	if analyzeTotal != "" {
		params.TotalColumn = analyzeTotal
	}
	if analyzeRegistration != "" {
		params.RegistrationColumn = analyzeRegistration
	}

	switch {
	case path == "":
		return params, "", usageErrorf("a table path or --race is required")
	case params.CandidateA == "" || params.CandidateB == "":
		return params, "", usageErrorf("--candidate-a and --candidate-b are required")
	}
	return params, path, nil
}

// readTable reads a CSV or XLSX table depending on the extension.
func readTable(path string) (*types.Table, error) {
	if tablewriter.FormatForPath(path, tablewriter.FormatCSV) == tablewriter.FormatXLSX {
		return xlsxparser.Parse(path, analyzeSheet)
	}
	delimiter, err := csvparser.ParseDelimiter(analyzeDelimiter)
	if err != nil {
		return nil, &usageError{err: err}
	}
	return csvparser.Parse(path, csvparser.Options{Delimiter: delimiter})
}

// statsRows formats the derived rows for the terminal.
func statsRows(result *analysis.Result) [][]string {
	rows := make([][]string, 0, len(result.Rows))
	for _, s := range result.Rows {
		rows = append(rows, []string{
			s.Precinct,
			quantity(s.Registered),
			quantity(s.Total),
			quantity(s.VotesA),
			quantity(s.VotesB),
			percent(s.Turnout),
			percent(s.ShareA),
			percent(s.ShareB),
		})
	}
	return rows
}
