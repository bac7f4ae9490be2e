// =============================================================================
// Clarity to CSV - Precinct Analysis
// =============================================================================
//
// This module derives per-precinct statistics from an exported table for a
// head-to-head comparison of two candidates:
//
//   turnout_percent = total / registered
//   {candidate}_share = candidate votes / total
//
// CLEANING:
//   Cells are parsed with CleanNumber. A precinct is dropped when its
//   registration or total is missing or not positive, when it falls below
//   the optional minimum thresholds, or when either share is not a finite
//   number.
//
// CANDIDATE COLUMNS:
//   A candidate name matches a header exactly, or else it stands for the
//   sum of every "{candidate} - {vote type}" column, which is how exported
//   tables split a candidate's votes.
//
// =============================================================================

package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/clarity-to-csv/internal/types"
)

// ErrColumnNotFound is returned when a configured column is not in the table.
var ErrColumnNotFound = errors.New("column not found")

// Derived column names.
const (
	ColumnTurnoutPercent = "turnout_percent"
	shareSuffix          = "_share"
)

// errorTokens are spreadsheet values that mean "no number".
var errorTokens = map[string]bool{
	"":        true,
	"#DIV/0!": true,
	"#N/A":    true,
	"#VALUE!": true,
	"#REF!":   true,
	"#NUM!":   true,
	"#NAME?":  true,
	"#NULL!":  true,
}

// CleanNumber parses a spreadsheet cell. Thousands separators and percent
// signs are removed first; "45%" is 45. It reports false for error tokens
// and anything that is not a finite number.
func CleanNumber(raw string) (float64, bool) {
	value := strings.TrimSpace(raw)
	if errorTokens[value] {
		return 0, false
	}
	value = strings.NewReplacer(",", "", "%", "").Replace(value)
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// =============================================================================
// COLUMN RESOLUTION
// =============================================================================

// Column is a named value read from one or more table columns.
type Column struct {
	Name    string
	Indexes []int
}

// ResolveColumn finds name in the table header. When no header matches
// exactly, every "{name} - ..." column is summed.
func ResolveColumn(table *types.Table, name string) (Column, error) {
	if i := table.Index(name); i >= 0 {
		return Column{Name: name, Indexes: []int{i}}, nil
	}

	prefix := name + " - "
	var indexes []int
	for i, header := range table.Header {
		if strings.HasPrefix(header, prefix) {
			indexes = append(indexes, i)
		}
	}
	if len(indexes) == 0 {
		return Column{}, fmt.Errorf("%w: %q (columns: %s)", ErrColumnNotFound, name, strings.Join(table.Header, ", "))
	}
	return Column{Name: name, Indexes: indexes}, nil
}

// Value returns the column's value in row. A summed column is missing only
// when every part is missing.
func (c Column) Value(table *types.Table, row int) (float64, bool) {
	var (
		sum   float64
		found bool
	)
	for _, index := range c.Indexes {
		if n, ok := CleanNumber(table.Cell(row, index)); ok {
			sum += n
			found = true
		}
	}
	return sum, found
}

// =============================================================================
// VOTER STATS
// =============================================================================

// Params names the columns and thresholds for VoterStats.
type Params struct {
	RegistrationColumn string
	TotalColumn        string
	CandidateA         string
	CandidateB         string

	// Zero disables a threshold.
	MinRegisteredVoters float64
	MinTotalVotes       float64
}

// PrecinctStats is one row of the derived table.
type PrecinctStats struct {
	Precinct   string
	Registered float64
	Total      float64
	VotesA     float64
	VotesB     float64
	Turnout    float64
	ShareA     float64
	ShareB     float64
}

// DropReason says why a precinct was left out.
type DropReason string

const (
	DropMissing   DropReason = "missing or non-positive registration/total"
	DropThreshold DropReason = "below minimum threshold"
	DropShare     DropReason = "candidate share not a number"
)

// Result is the derived table.
type Result struct {
	Params  Params
	Rows    []PrecinctStats
	Dropped map[DropReason]int
}

// VoterStats computes turnout and candidate shares per precinct.
func VoterStats(table *types.Table, params Params) (*Result, error) {
	columns := make([]Column, 0, 4)
	for _, name := range []string{params.RegistrationColumn, params.TotalColumn, params.CandidateA, params.CandidateB} {
		if name == "" {
			return nil, fmt.Errorf("registration, total and both candidate columns are required")
		}
		column, err := ResolveColumn(table, name)
		if err != nil {
			return nil, err
		}
		columns = append(columns, column)
	}
	reg, tot, a, b := columns[0], columns[1], columns[2], columns[3]
	precinctIndex := table.Index(types.ColumnPrecinctID)

	result := &Result{Params: params, Dropped: map[DropReason]int{}}
	for row := range table.Rows {
		registered, okReg := reg.Value(table, row)
		total, okTot := tot.Value(table, row)
		if !okReg || !okTot || registered <= 0 || total <= 0 {
			result.Dropped[DropMissing]++
			continue
		}
		if registered < params.MinRegisteredVoters || total < params.MinTotalVotes {
			result.Dropped[DropThreshold]++
			continue
		}

		votesA, okA := a.Value(table, row)
		votesB, okB := b.Value(table, row)
		shareA, shareB := votesA/total, votesB/total
		if !okA || !okB || !finite(shareA) || !finite(shareB) {
			result.Dropped[DropShare]++
			continue
		}

		precinct := strconv.Itoa(row + 1)
		if precinctIndex >= 0 {
			precinct = table.Cell(row, precinctIndex)
		}
		result.Rows = append(result.Rows, PrecinctStats{
			Precinct:   precinct,
			Registered: registered,
			Total:      total,
			VotesA:     votesA,
			VotesB:     votesB,
			Turnout:    total / registered,
			ShareA:     shareA,
			ShareB:     shareB,
		})
	}
	return result, nil
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// DroppedTotal returns the number of precincts left out.
func (r *Result) DroppedTotal() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// DropReasons returns the reasons that dropped at least one precinct, sorted.
func (r *Result) DropReasons() []DropReason {
	reasons := make([]DropReason, 0, len(r.Dropped))
	for reason, n := range r.Dropped {
		if n > 0 {
			reasons = append(reasons, reason)
		}
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

// =============================================================================
// OUTPUT
// =============================================================================

// Header returns the derived table's column labels.
func (r *Result) Header() []string {
	return []string{
		types.ColumnPrecinctID,
		r.Params.RegistrationColumn,
		r.Params.TotalColumn,
		r.Params.CandidateA,
		r.Params.CandidateB,
		ColumnTurnoutPercent,
		r.Params.CandidateA + shareSuffix,
		r.Params.CandidateB + shareSuffix,
	}
}

// Table returns the derived table with ratios as plain decimals.
func (r *Result) Table() *types.Table {
	table := &types.Table{Header: r.Header()}
	for _, s := range r.Rows {
		table.Rows = append(table.Rows, []string{
			s.Precinct,
			formatNumber(s.Registered),
			formatNumber(s.Total),
			formatNumber(s.VotesA),
			formatNumber(s.VotesB),
			formatNumber(s.Turnout),
			formatNumber(s.ShareA),
			formatNumber(s.ShareB),
		})
	}
	return table
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Summary aggregates the kept precincts.
type Summary struct {
	Precincts  int
	Registered float64
	Total      float64
	VotesA     float64
	VotesB     float64
}

// Turnout is total votes over registered voters across kept precincts.
func (s Summary) Turnout() float64 { return ratio(s.Total, s.Registered) }

// ShareA is candidate A's share of the total across kept precincts.
func (s Summary) ShareA() float64 { return ratio(s.VotesA, s.Total) }

// ShareB is candidate B's share of the total across kept precincts.
func (s Summary) ShareB() float64 { return ratio(s.VotesB, s.Total) }

func ratio(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// Summary sums the kept precincts.
func (r *Result) Summary() Summary {
	s := Summary{Precincts: len(r.Rows)}
	for _, row := range r.Rows {
		s.Registered += row.Registered
		s.Total += row.Total
		s.VotesA += row.VotesA
		s.VotesB += row.VotesB
	}
	return s
}
