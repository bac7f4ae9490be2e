// =============================================================================
// Clarity to CSV - Shared Types
// =============================================================================
//
// This package contains the tabular type shared by the modules that build,
// check, write and read precinct tables, so none of them has to import the
// others:
//   - converter   (builds a Table from a detail report)
//   - validation  (checks a built Table)
//   - tablewriter (writes a Table as CSV or XLSX)
//   - csvparser, xlsxparser (read a Table back for analysis)
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// FIXED COLUMNS
// =============================================================================

// The four leading columns of every exported precinct table. Candidate vote
// columns follow them.
const (
	ColumnPrecinctID       = "precinct_id"
	ColumnRegisteredVoters = "registered_voters"
	ColumnContestName      = "contest_name"
	ColumnTotalVotesCast   = "total_votes_cast"
)

// FixedColumns lists the leading columns in output order.
var FixedColumns = []string{
	ColumnPrecinctID,
	ColumnRegisteredVoters,
	ColumnContestName,
	ColumnTotalVotesCast,
}

// =============================================================================
// TABLE
// =============================================================================

// Table is a header row plus data rows of string cells.
type Table struct {
	// Header holds the column labels.
	Header []string

	// Rows holds the data rows. A well-formed table has len(row) ==
	// len(Header) for every row; readers pad short rows to that length.
	Rows [][]string

	// Source is the file the table was read from, if any. It is only used
	// in error messages.
	Source string
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(column string) int {
	for i, name := range t.Header {
		if name == column {
			return i
		}
	}
	return -1
}

// Cell returns the value at row/column, or "" when the row is short.
func (t *Table) Cell(row, column int) string {
	if row < 0 || row >= len(t.Rows) || column < 0 || column >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][column]
}

// =============================================================================
// READING
// =============================================================================

// NewTable builds a Table from raw rows read from a file. The first row is
// the header. Header labels and cells are trimmed, empty header labels are
// named "Column_N", rows with no content are dropped and every row is padded
// or cut to the header width.
func NewTable(source string, raw [][]string) *Table {
	table := &Table{Source: source}
	if len(raw) == 0 {
		return table
	}

	table.Header = cleanHeaders(raw[0])
	width := len(table.Header)
	for _, row := range raw[1:] {
		if isRowEmpty(row) {
			continue
		}
		cells := make([]string, width)
		for i := 0; i < width && i < len(row); i++ {
			cells[i] = strings.TrimSpace(row[i])
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
