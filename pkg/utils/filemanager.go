// =============================================================================
// Clarity to CSV - File Manager Utility
// =============================================================================
//
// This module provides file utilities for batch exports:
//   - Output file naming from a placeholder format
//   - Directory management
//   - Processing summary logs
//
// Source XML files are never moved or modified. A summary log is written to
// the output directory after every 'process' run so a batch can be audited
// without rereading the console output.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates every directory in dirs that does not exist.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// volatilePlaceholders change on every call.
var volatilePlaceholders = []string{"{uuid}", "{timestamp}", "{date}", "{time}"}

// GenerateOutputFileName builds an output file name from a format string.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//             plus one {key} per entry in params.
//   - extension: The extension the name must end with, including the dot.
//             A different .csv or .xlsx extension in format is replaced.
//   - params: A map of placeholder values.
//
// RETURNS:
//   - The generated file name. Path separators in values are replaced with
//     underscores so a value cannot change the output directory.
//
// EXAMPLE:
//   format:    "{election}_{race}_{timestamp}.csv"
//   extension: ".xlsx"
//   params:    {"election": "2024_general", "race": "president"}
//   output:    "2024_general_president_20241106_143022.xlsx"
func GenerateOutputFileName(format, extension string, params map[string]string) string {
	now := time.Now()

	// Build replacements.
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	// Add custom params.
	for key, value := range params {
		replacements["{"+key+"}"] = sanitizeName(value)
	}

	// Apply replacements.
	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Ensure the extension matches the output format.
	switch strings.ToLower(filepath.Ext(result)) {
	case strings.ToLower(extension):
		return result
	case ".csv", ".xlsx":
		result = strings.TrimSuffix(result, filepath.Ext(result))
	}
	return result + extension
}

// HasVolatilePlaceholders reports whether format produces a different name
// on every call.
func HasVolatilePlaceholders(format string) bool {
	for _, placeholder := range volatilePlaceholders {
		if strings.Contains(format, placeholder) {
			return true
		}
	}
	return false
}

func sanitizeName(value string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(value)
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID          string
	StartTime      time.Time
	EndTime        time.Time
	TotalRaces     int
	Successful     int
	Failed         int
	Skipped        int
	TotalPrecincts int
	Malformed      int
	ExportedRaces  []ExportedRaceInfo
	FailedRaces    []FailedRaceInfo
}

// ExportedRaceInfo describes a successfully exported race.
type ExportedRaceInfo struct {
	Race        string
	InputFile   string
	OutputFile  string
	ContestName string
	Precincts   int
	Columns     int
	Unmatched   int
	Malformed   int
	ProcessTime time.Duration
}

// FailedRaceInfo describes a race that was not exported.
type FailedRaceInfo struct {
	Race         string
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	if err := EnsureDirectories(outputDir); err != nil {
		return "", err
	}

	// Generate summary file name.
	timestamp := summary.StartTime.Format("20060102_150405")
	summaryFileName := fmt.Sprintf("processing_summary_%s.txt", timestamp)
	summaryPath := filepath.Join(outputDir, summaryFileName)

	// Create the file.
	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	// Write header.
	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Clarity to CSV - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Races:        %d\n"+
		"  Successful:         %d\n"+
		"  Failed:             %d\n"+
		"  Skipped:            %d\n"+
		"  Total Precincts:    %s\n"+
		"  Malformed Values:   %s\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.Round(time.Millisecond).String(),
		summary.TotalRaces,
		summary.Successful,
		summary.Failed,
		summary.Skipped,
		humanize.Comma(int64(summary.TotalPrecincts)),
		humanize.Comma(int64(summary.Malformed)))

	// Write exported races.
	if len(summary.ExportedRaces) > 0 {
		writer.WriteString("Exported Races:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, race := range summary.ExportedRaces {
			fmt.Fprintf(writer, "  Race:         %s\n", race.Race)
			fmt.Fprintf(writer, "  Contest:      %s\n", race.ContestName)
			fmt.Fprintf(writer, "  Input:        %s\n", race.InputFile)
			fmt.Fprintf(writer, "  Output:       %s\n", race.OutputFile)
			if size, err := GetFileSize(race.OutputFile); err == nil {
				fmt.Fprintf(writer, "  Size:         %s\n", humanize.Bytes(uint64(size)))
			}
			fmt.Fprintf(writer, "  Precincts:    %s\n", humanize.Comma(int64(race.Precincts)))
			fmt.Fprintf(writer, "  Columns:      %d\n", race.Columns)
			if race.Unmatched > 0 {
				fmt.Fprintf(writer, "  No Turnout:   %d precinct(s)\n", race.Unmatched)
			}
			if race.Malformed > 0 {
				fmt.Fprintf(writer, "  Malformed:    %d value(s)\n", race.Malformed)
			}
			fmt.Fprintf(writer, "  Process Time: %s\n\n", race.ProcessTime.Round(time.Millisecond).String())
		}
	}

	// Write failed races.
	if len(summary.FailedRaces) > 0 {
		writer.WriteString("Failed Races:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, race := range summary.FailedRaces {
			fmt.Fprintf(writer, "  Race:  %s\n", race.Race)
			fmt.Fprintf(writer, "  File:  %s\n", race.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", race.ErrorMessage)
		}
	}

	// Write footer.
	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
