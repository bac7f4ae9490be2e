package converter

import (
	"strconv"

	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
	"github.com/ginjaninja78/clarity-to-csv/internal/types"
)

// BuildHeader returns the fixed columns followed by one "{candidate} - {vote
// type}" column per candidate and vote type, candidates in contest order.
func BuildHeader(choices []clarity.Choice, voteTypes []string) []string {
	header := make([]string, 0, len(types.FixedColumns)+len(choices)*len(voteTypes))
	header = append(header, types.FixedColumns...)
	for i := range choices {
		name := choices[i].CandidateName()
		for _, voteType := range voteTypes {
			header = append(header, name+" - "+voteType)
		}
	}
	return header
}

// BuildTable builds the precinct table for contest.
//
// Rows follow the aggregation's precinct order. Registration and ballots cast
// are left empty for precincts missing from the turnout maps: an empty cell
// means unknown, which is not the same as zero. Vote cells are always numeric;
// a candidate with no entry for a vote type in a precinct gets "0".
func BuildTable(contest *clarity.Contest, agg *Aggregation, turnout Turnout, voteTypes []string) *types.Table {
	table := &types.Table{
		Header: BuildHeader(contest.Choices, voteTypes),
		Rows:   make([][]string, 0, agg.Len()),
	}

	contestName := contest.Text
	for _, precinct := range agg.Precincts() {
		row := make([]string, 0, len(table.Header))
		row = append(row,
			precinct,
			lookup(turnout.Registered, precinct),
			contestName,
			lookup(turnout.BallotsCast, precinct),
		)
		for candidate := range contest.Choices {
			for _, voteType := range voteTypes {
				row = append(row, strconv.Itoa(agg.Votes(precinct, candidate, voteType)))
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func lookup(values map[string]int, precinct string) string {
	value, ok := values[precinct]
	if !ok {
		return ""
	}
	return strconv.Itoa(value)
}
