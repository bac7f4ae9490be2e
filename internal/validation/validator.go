// =============================================================================
// Clarity to CSV - Table Validation
// =============================================================================
//
// This module checks a compiled precinct table before it is written. The
// converter builds tables that satisfy these rules by construction, so a
// fatal error here means a bug upstream and the export is stopped instead of
// writing a table downstream tools would misread.
//
// RULES:
//   Structural (fatal):
//     - The header starts with the four fixed columns
//     - The number of candidate columns is candidates x vote types
//     - Every row is as wide as the header
//     - Precinct ids are non-empty and unique
//     - The contest name is the same in every row
//     - Vote cells are non-negative integers
//     - Registration and ballots cast are empty or non-negative integers
//   Informational (warning):
//     - A precinct has no turnout metadata (empty registration/ballots cast)
//
// =============================================================================

package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/clarity-to-csv/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a single rule violation.
type ValidationError struct {
	// Severity is SeverityError for fatal problems, SeverityWarning otherwise.
	Severity string

	// Row is the 1-based data row number, or 0 for header problems.
	Row int

	// Column is the column label the problem was found in, if any.
	Column string

	// Value is the offending cell value.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var location string
	switch {
	case e.Row == 0:
		location = "header"
	case e.Column != "":
		location = fmt.Sprintf("row %d, column '%s'", e.Row, e.Column)
	default:
		location = fmt.Sprintf("row %d", e.Row)
	}
	if e.Value != "" {
		return fmt.Sprintf("[%s] %s: %s (value: '%s')", strings.ToUpper(e.Severity), location, e.Message, e.Value)
	}
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), location, e.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the outcome of validating one table.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RowsValidated is the number of data rows checked.
	RowsValidated int

	// UnmatchedPrecincts counts rows without turnout metadata.
	UnmatchedPrecincts int
}

func (r *ValidationResult) add(err *ValidationError) {
	r.Errors = append(r.Errors, err)
	if err.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
}

// Shape is the expected size of the candidate block.
type Shape struct {
	Candidates int
	VoteTypes  int
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks table against the rules listed in the package comment.
func Validate(table *types.Table, shape Shape) *ValidationResult {
	result := &ValidationResult{IsValid: true, RowsValidated: len(table.Rows)}

	if !validateHeader(table.Header, shape, result) {
		return result
	}

	width := len(table.Header)
	seen := make(map[string]int, len(table.Rows))
	contestName := ""
	for i, row := range table.Rows {
		rowNumber := i + 1
		if len(row) != width {
			result.add(&ValidationError{
				Severity: SeverityError,
				Row:      rowNumber,
				Message:  fmt.Sprintf("row has %d cells, header has %d", len(row), width),
			})
			continue
		}

		precinct := row[0]
		switch first, dup := seen[precinct]; {
		case precinct == "":
			result.add(&ValidationError{Severity: SeverityError, Row: rowNumber, Column: types.ColumnPrecinctID, Message: "precinct id is empty"})
		case dup:
			result.add(&ValidationError{
				Severity: SeverityError,
				Row:      rowNumber,
				Column:   types.ColumnPrecinctID,
				Value:    precinct,
				Message:  fmt.Sprintf("precinct already listed on row %d", first),
			})
		default:
			seen[precinct] = rowNumber
		}

		if i == 0 {
			contestName = row[2]
		} else if row[2] != contestName {
			result.add(&ValidationError{
				Severity: SeverityError,
				Row:      rowNumber,
				Column:   types.ColumnContestName,
				Value:    row[2],
				Message:  fmt.Sprintf("contest name differs from first row ('%s')", contestName),
			})
		}

		validateMetadata(row, rowNumber, result)

		for col := len(types.FixedColumns); col < width; col++ {
			if !isCount(row[col]) {
				result.add(&ValidationError{
					Severity: SeverityError,
					Row:      rowNumber,
					Column:   table.Header[col],
					Value:    row[col],
					Message:  "vote count must be a non-negative integer",
				})
			}
		}
	}

	return result
}

// validateHeader reports whether the header is usable for row checks.
func validateHeader(header []string, shape Shape, result *ValidationResult) bool {
	if len(header) < len(types.FixedColumns) {
		result.add(&ValidationError{Severity: SeverityError, Message: "header is missing fixed columns"})
		return false
	}
	for i, name := range types.FixedColumns {
		if header[i] != name {
			result.add(&ValidationError{
				Severity: SeverityError,
				Column:   name,
				Value:    header[i],
				Message:  fmt.Sprintf("expected column %d to be '%s'", i+1, name),
			})
		}
	}
	want := shape.Candidates * shape.VoteTypes
	if got := len(header) - len(types.FixedColumns); got != want {
		result.add(&ValidationError{
			Severity: SeverityError,
			Message: fmt.Sprintf("expected %d candidate columns (%d candidates x %d vote types), found %d",
				want, shape.Candidates, shape.VoteTypes, got),
		})
		return false
	}
	return result.IsValid
}

func validateMetadata(row []string, rowNumber int, result *ValidationResult) {
	registered, cast := row[1], row[3]
	if registered == "" || cast == "" {
		result.UnmatchedPrecincts++
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Row:      rowNumber,
			Value:    row[0],
			Message:  "precinct has no turnout metadata",
		})
	}
	checks := []struct {
		column string
		value  string
	}{
		{types.ColumnRegisteredVoters, registered},
		{types.ColumnTotalVotesCast, cast},
	}
	for _, check := range checks {
		if check.value != "" && !isCount(check.value) {
			result.add(&ValidationError{
				Severity: SeverityError,
				Row:      rowNumber,
				Column:   check.column,
				Value:    check.value,
				Message:  "must be empty or a non-negative integer",
			})
		}
	}
}

func isCount(value string) bool {
	n, err := strconv.Atoi(value)
	return err == nil && n >= 0
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors formats findings for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// Fatal returns only the fatal findings.
func (r *ValidationResult) Fatal() []*ValidationError {
	var fatal []*ValidationError
	for _, err := range r.Errors {
		if err.Severity == SeverityError {
			fatal = append(fatal, err)
		}
	}
	return fatal
}
