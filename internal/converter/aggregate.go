package converter

import (
	"math"

	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
	"github.com/ginjaninja78/clarity-to-csv/internal/numeric"
)

// =============================================================================
// AGGREGATION TABLE
// =============================================================================

// Aggregation accumulates votes per precinct, per candidate, per vote type.
//
// Candidates are addressed by their position in the contest rather than by
// display name, so two choices that share a label keep separate columns.
// Precincts keep the order in which they were first seen; that order is the
// row order of the export.
type Aggregation struct {
	candidates int
	order      []string
	precincts  map[string][]map[string]int
}

// NewAggregation returns an empty table for a contest with the given number
// of candidates.
func NewAggregation(candidates int) *Aggregation {
	return &Aggregation{
		candidates: candidates,
		precincts:  make(map[string][]map[string]int),
	}
}

// Add adds votes to the (precinct, candidate, voteType) cell. Repeated calls
// for the same cell accumulate. A sum that would pass math.MaxInt is held at
// math.MaxInt and Add reports false.
func (a *Aggregation) Add(precinct string, candidate int, voteType string, votes int) bool {
	byCandidate, ok := a.precincts[precinct]
	if !ok {
		byCandidate = make([]map[string]int, a.candidates)
		a.precincts[precinct] = byCandidate
		a.order = append(a.order, precinct)
	}
	if byCandidate[candidate] == nil {
		byCandidate[candidate] = make(map[string]int)
	}
	cell := byCandidate[candidate][voteType]
	if votes > math.MaxInt-cell {
		byCandidate[candidate][voteType] = math.MaxInt
		return false
	}
	byCandidate[candidate][voteType] = cell + votes
	return true
}

// Votes returns the accumulated count for a cell, 0 when nothing was added.
func (a *Aggregation) Votes(precinct string, candidate int, voteType string) int {
	byCandidate, ok := a.precincts[precinct]
	if !ok || candidate < 0 || candidate >= len(byCandidate) {
		return 0
	}
	return byCandidate[candidate][voteType]
}

// Precincts returns precinct ids in first-seen order. The slice is shared;
// callers must not modify it.
func (a *Aggregation) Precincts() []string {
	return a.order
}

// Len returns the number of precincts.
func (a *Aggregation) Len() int {
	return len(a.order)
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregate walks choice -> vote type -> precinct and sums the votes of every
// leaf. Unnamed vote types and unnamed precincts are skipped since there is
// no key to file them under. Vote counts go through numeric coercion, so a
// missing or malformed count adds 0. A cell that overflows is clamped and
// counted as a "votes" recovery.
func Aggregate(choices []clarity.Choice, tally *numeric.Tally) *Aggregation {
	agg := NewAggregation(len(choices))
	for candidate, choice := range choices {
		for _, voteType := range choice.VoteTypes {
			if voteType.Name == "" {
				continue
			}
			for _, precinct := range voteType.Precincts {
				if precinct.Name == "" {
					continue
				}
				votes := tally.Coerce("votes", precinct.Votes)
				if !agg.Add(precinct.Name, candidate, voteType.Name, votes) {
					tally.Record("votes")
				}
			}
		}
	}
	return agg
}
