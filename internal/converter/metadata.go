package converter

import (
	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
	"github.com/ginjaninja78/clarity-to-csv/internal/numeric"
)

// Turnout holds per-precinct registration and ballots cast from the turnout
// section of a report. The two maps are independent: a precinct may appear in
// either, both, or neither, and neither is cross-checked against contest data.
type Turnout struct {
	Registered  map[string]int
	BallotsCast map[string]int
}

// LoadTurnout reads the turnout section of doc. A report without one yields
// empty maps. Entries without a name are skipped, and later duplicates of a
// name replace earlier ones.
func LoadTurnout(doc *clarity.Document, tally *numeric.Tally) Turnout {
	turnout := Turnout{
		Registered:  make(map[string]int),
		BallotsCast: make(map[string]int),
	}
	if doc.VoterTurnout == nil {
		return turnout
	}

	for _, precinct := range doc.VoterTurnout.Precincts {
		if precinct.Name == "" {
			continue
		}
		turnout.Registered[precinct.Name] = tally.Coerce("totalVoters", precinct.TotalVoters)
		turnout.BallotsCast[precinct.Name] = tally.Coerce("ballotsCast", precinct.BallotsCast)
	}
	return turnout
}
