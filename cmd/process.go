// =============================================================================
// Clarity to CSV - Process Command
// =============================================================================
//
// This file defines the 'process' command, which exports every race in the
// configuration file.
//
// COMMAND USAGE:
//   clarity process [flags]
//
// FLAGS:
//   --dry-run  : List the races that would be exported without reading them
//   --election : Process only the races of one election
//
// PROCESSING PIPELINE:
//   1. Load the configuration file
//   2. Select every race with a detail file and a contest or choice key
//   3. Export the races concurrently (max_concurrency at a time)
//   4. Print a summary and write a summary log to the output directory
//
// Races fail independently. With continue_on_error set to false, races that
// have not started when the first failure happens are skipped.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/clarity-to-csv/internal/config"
	"github.com/ginjaninja78/clarity-to-csv/internal/converter"
	"github.com/ginjaninja78/clarity-to-csv/internal/tablewriter"
	"github.com/ginjaninja78/clarity-to-csv/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun lists races without exporting them.
var dryRun bool

// election filters processing to one election key.
var election string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Export every race in the configuration file",
	Long: `The process command exports every configured race that names a detail
XML file and a contest or choice key. Races are exported concurrently, and
each writes its own table to its output path (or output_dir plus
output_name_format).

A summary report is written to the output directory after every run.`,
	Args: withUsage(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	// --dry-run flag: List races without exporting.
	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"List the races that would be exported without exporting them",
	)

	// --election flag: Process only one election.
	processCmd.Flags().StringVar(
		&election,
		"election",
		"",
		"Process only the races of this election",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess is the main processing function.
func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	cfg, exists, err := loadConfig()
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("configuration file %s not found", cfgFile)
	}

	jobs, entries := buildJobs(cfg)
	if election != "" && len(entries) == 0 {
		return fmt.Errorf("%w: no exportable races in election %q", config.ErrRaceNotFound, election)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No exportable races in the configuration.")
		return nil
	}

	if dryRun {
		rows := make([][]string, 0, len(jobs))
		for i, job := range jobs {
			source := job.XMLPath
			if !utils.FileExists(source) {
				source += " (missing)"
			}
			rows = append(rows, []string{entries[i].Ref(), source, job.Options.Selector.String(), job.Options.OutputPath})
		}
		fmt.Fprintln(out, renderTable([]string{"Race", "Detail File", "Selector", "Output"}, rows))
		return nil
	}

	logger.Info("processing races",
		"races", len(jobs),
		"concurrency", cfg.Settings.MaxConcurrency,
		"continue_on_error", cfg.Settings.ContinueOnError,
	)

	results := converter.RunBatch(jobs, cfg.Settings.MaxConcurrency, !cfg.Settings.ContinueOnError, logger)

	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		TotalRaces: len(results),
	}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		status := "ok"
		switch {
		case result.Success:
			summary.Successful++
			summary.TotalPrecincts += result.Stats.Precincts
			summary.Malformed += result.Stats.MalformedValues
			summary.ExportedRaces = append(summary.ExportedRaces, utils.ExportedRaceInfo{
				Race:        result.Name,
				InputFile:   result.FilePath,
				OutputFile:  result.OutputFile,
				ContestName: result.ContestName,
				Precincts:   result.Stats.Precincts,
				Columns:     result.Stats.Columns,
				Unmatched:   result.Stats.UnmatchedPrecincts,
				Malformed:   result.Stats.MalformedValues,
				ProcessTime: result.Stats.ProcessingTime,
			})
		case errors.Is(result.Error, converter.ErrSkipped):
			status = "skipped"
			summary.Skipped++
		default:
			status = "failed"
			summary.Failed++
			summary.FailedRaces = append(summary.FailedRaces, utils.FailedRaceInfo{
				Race:         result.Name,
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			logger.Error("race failed", "race", result.Name, "error", result.Error)
		}

		detail := result.OutputFile
		if !result.Success {
			detail = result.Error.Error()
		}
		rows = append(rows, []string{result.Name, status, count(result.Stats.Precincts), detail})
	}
	summary.EndTime = time.Now()

	fmt.Fprintln(out, renderTable([]string{"Race", "Status", "Precincts", "Output / Error"}, rows))
	fmt.Fprintf(out, "Exported %d of %d race(s) in %s\n",
		summary.Successful, summary.TotalRaces, summary.EndTime.Sub(startTime).Round(time.Millisecond))

	summaryPath, err := utils.WriteSummaryLog(summary, cfg.Settings.OutputDir)
	if err != nil {
		logger.Warn("could not write summary log", "error", err)
	} else {
		logger.Info("wrote summary log", "path", summaryPath)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d race(s) failed", summary.Failed, summary.TotalRaces)
	}
	return nil
}

// buildJobs turns the exportable races into batch jobs.
func buildJobs(cfg *config.Config) ([]converter.Job, []config.RaceEntry) {
	var (
		jobs    []converter.Job
		entries []config.RaceEntry
	)
	for _, entry := range cfg.Races() {
		if election != "" && entry.Election != election {
			continue
		}
		if !entry.Race.Exportable() {
			logger.Debug("race has no detail file or selector, not exporting", "race", entry.Ref())
			continue
		}
		outputPath := cfg.OutputPath(entry)
		jobs = append(jobs, converter.Job{
			XMLPath: entry.Race.File,
			Options: converter.Options{
				Name:       entry.Ref(),
				Selector:   entry.Race.Selector(),
				OutputPath: outputPath,
				Format:     tablewriter.FormatForPath(outputPath, cfg.Settings.Format()),
			},
		})
		entries = append(entries, entry)
	}
	return jobs, entries
}
