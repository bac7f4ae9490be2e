// =============================================================================
// Clarity to CSV - Table Writer Module
// =============================================================================
//
// This module serializes a compiled precinct table. Two formats are
// supported:
//   - csv:  comma separated, one "\n" terminated line per row, fields quoted
//           only when they contain a delimiter, quote or line break
//   - xlsx: a single-sheet workbook with numeric cells stored as numbers,
//           for spreadsheet-based analysis
//
// Files are written to a temporary sibling and renamed into place, so a
// failed write never leaves a partial table at the destination.
//
// =============================================================================

package tablewriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/clarity-to-csv/internal/types"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name. An empty name means CSV.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want csv or xlsx)", name)
	}
}

// FormatForPath returns the format implied by a file extension, or fallback.
func FormatForPath(path string, fallback Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	default:
		return fallback
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatXLSX {
		return ".xlsx"
	}
	return ".csv"
}

// =============================================================================
// WRITERS
// =============================================================================

// Write encodes table to w in the given format.
func Write(w io.Writer, table *types.Table, format Format) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, table)
	case FormatCSV, "":
		return WriteCSV(w, table)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteCSV writes the header and rows of table to w as CSV.
func WriteCSV(w io.Writer, table *types.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// WriteFile writes table to path, replacing any existing file.
//
// PARAMETERS:
//   - path: Destination file. Parent directories are created if needed.
//   - table: The table to write.
//   - format: Output encoding.
//
// RETURNS:
//   - An error if the file cannot be written. The destination is left
//     untouched in that case.
func WriteFile(path string, table *types.Table, format Format) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Write(tmp, table, format); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
