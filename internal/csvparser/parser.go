// =============================================================================
// Clarity to CSV - CSV Parser Module
// =============================================================================
//
// This module reads a precinct table back from CSV for the analyze command.
// It accepts the tables this tool writes as well as tables saved by
// spreadsheet programs, which often differ in small ways:
//   - A UTF-8 byte order mark before the header
//   - Semicolon or tab delimiters
//   - Stray spaces around cells
//   - Blank trailing lines and rows of different widths
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/clarity-to-csv/internal/types"
)

// Options controls how a CSV file is read.
type Options struct {
	// Delimiter separates fields. Zero means comma.
	//
	// Accepted names for ParseDelimiter: "," "tab" "\t" "|" "pipe" ";" "semicolon".
	Delimiter rune
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file into a table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - opts: Reader options.
//
// RETURNS:
//   - The table. The first record is the header.
//   - An error if the file cannot be read, is not valid CSV, or is empty.
func Parse(filePath string, opts Options) (*types.Table, error) {
	// Open the file.
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	table.Source = filePath
	return table, nil
}

// ParseReader reads CSV from r into a table.
func ParseReader(r io.Reader, opts Options) (*types.Table, error) {
	// Strip a UTF-8 byte order mark if present.
	decoded := transform.NewReader(bufio.NewReader(r), unicode.UTF8BOM.NewDecoder())

	// Create the CSV reader.
	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, opts)

	// Read all rows.
	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	// Validate that we have data.
	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	return types.NewTable("", allRows), nil
}

// configureReader configures the CSV reader based on the options.
func configureReader(reader *csv.Reader, opts Options) {
	reader.Comma = ','
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	// Trim leading space from fields.
	reader.TrimLeadingSpace = true
}

// ParseDelimiter maps a delimiter name to the rune the reader uses.
func ParseDelimiter(name string) (rune, error) {
	switch name {
	case "", ",", "comma":
		return ',', nil
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "|", "pipe", "PIPE":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter %q", name)
	}
}
