// =============================================================================
// Clarity to CSV - Detail Report Document Model
// =============================================================================
//
// This package models the "detail" XML report produced by Clarity election
// night reporting sites. Only the elements the exporter reads are mapped:
//
//   <ElectionResult>
//     <ElectionName/> <ElectionDate/> <Region/> <Timestamp/>
//     <VoterTurnout totalVoters=".." ballotsCast="..">
//       <Precincts>
//         <Precinct name=".." totalVoters=".." ballotsCast=".." />
//       </Precincts>
//     </VoterTurnout>
//     <Contest key=".." text="..">
//       <Choice key=".." text="..">
//         <VoteType name="Election Day">
//           <Precinct name=".." votes=".." />
//         </VoteType>
//       </Choice>
//     </Contest>
//   </ElectionResult>
//
// The root element name is not checked. Every numeric attribute is kept as a
// raw string; conversion happens in the numeric package so that malformed
// values can be recovered one cell at a time.
//
// =============================================================================

package clarity

import "encoding/xml"

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a parsed detail report.
type Document struct {
	XMLName xml.Name

	// ElectionName, ElectionDate, Region and Timestamp are informational
	// child elements present in most exports.
	ElectionName string `xml:"ElectionName"`
	ElectionDate string `xml:"ElectionDate"`
	Region       string `xml:"Region"`
	Timestamp    string `xml:"Timestamp"`

	// Contests are the races and ballot questions, in document order.
	Contests []Contest `xml:"Contest"`

	// VoterTurnout is the contest-independent turnout section. It is nil
	// when the export omits it.
	VoterTurnout *VoterTurnout `xml:"VoterTurnout"`
}

// FindContest returns the first contest whose key matches exactly, or nil.
func (d *Document) FindContest(key string) *Contest {
	for i := range d.Contests {
		if d.Contests[i].Key == key {
			return &d.Contests[i]
		}
	}
	return nil
}

// =============================================================================
// CONTEST HIERARCHY
// =============================================================================

// Contest is a single race or ballot question.
type Contest struct {
	Key  string `xml:"key,attr"`
	Text string `xml:"text,attr"`

	VoteFor                string `xml:"voteFor,attr"`
	IsQuestion             string `xml:"isQuestion,attr"`
	PrecinctsReporting     string `xml:"precinctsReporting,attr"`
	PrecinctsParticipating string `xml:"precinctsParticipating,attr"`

	Choices []Choice `xml:"Choice"`
}

// DisplayName returns the contest text, falling back to its key and then to
// a fixed placeholder.
func (c *Contest) DisplayName() string {
	switch {
	case c.Text != "":
		return c.Text
	case c.Key != "":
		return c.Key
	default:
		return "unknown contest"
	}
}

// HasChoice reports whether the contest has a choice with the given key.
func (c *Contest) HasChoice(key string) bool {
	for i := range c.Choices {
		if c.Choices[i].Key == key {
			return true
		}
	}
	return false
}

// Choice is a candidate or ballot option within a contest.
type Choice struct {
	Key        string `xml:"key,attr"`
	Text       string `xml:"text,attr"`
	Party      string `xml:"party,attr"`
	TotalVotes string `xml:"totalVotes,attr"`

	VoteTypes []VoteType `xml:"VoteType"`

	// HasText is set when the text attribute is present, even if empty.
	HasText bool `xml:"-"`
}

// UnmarshalXML decodes the choice and records whether text was present.
func (c *Choice) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain Choice
	if err := d.DecodeElement((*plain)(c), &start); err != nil {
		return err
	}
	for _, attr := range start.Attr {
		if attr.Name.Local == "text" {
			c.HasText = true
			break
		}
	}
	return nil
}

// CandidateName is the label used for the choice in output headers. A choice
// without a text attribute is labelled "Choice {key}"; an empty text stays
// empty.
func (c *Choice) CandidateName() string {
	if c.HasText || c.Text != "" {
		return c.Text
	}
	return "Choice " + c.Key
}

// VoteType groups one choice's precinct counts for a reporting category such
// as "Election Day" or "Absentee by Mail".
type VoteType struct {
	Name      string         `xml:"name,attr"`
	Votes     string         `xml:"votes,attr"`
	Precincts []PrecinctVote `xml:"Precinct"`
}

// PrecinctVote is a single precinct leaf under a vote type.
type PrecinctVote struct {
	Name  string `xml:"name,attr"`
	Votes string `xml:"votes,attr"`
}

// =============================================================================
// TURNOUT
// =============================================================================

// VoterTurnout holds registration and ballots cast for the whole election and
// for each precinct.
type VoterTurnout struct {
	TotalVoters  string            `xml:"totalVoters,attr"`
	BallotsCast  string            `xml:"ballotsCast,attr"`
	VoterTurnout string            `xml:"voterTurnout,attr"`
	Precincts    []TurnoutPrecinct `xml:"Precincts>Precinct"`
}

// TurnoutPrecinct is one precinct entry of the turnout section.
type TurnoutPrecinct struct {
	Name             string `xml:"name,attr"`
	TotalVoters      string `xml:"totalVoters,attr"`
	BallotsCast      string `xml:"ballotsCast,attr"`
	VoterTurnout     string `xml:"voterTurnout,attr"`
	PercentReporting string `xml:"percentReporting,attr"`
}
