package converter

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
	"github.com/ginjaninja78/clarity-to-csv/internal/numeric"
	"github.com/ginjaninja78/clarity-to-csv/internal/tablewriter"
	"github.com/ginjaninja78/clarity-to-csv/internal/types"
)

func parseFixture(t *testing.T, name string) *clarity.Document {
	t.Helper()
	doc, err := clarity.ParseFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return doc
}

func TestRunRoundTripByContestKey(t *testing.T) {
	var out bytes.Buffer
	result := New("testdata/detail.xml", Options{
		Selector: clarity.Selector{ContestKey: "c1"},
		Stdout:   &out,
	}, nil).Run()

	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, StdoutPath, result.OutputFile)
	assert.Equal(t, "c1", result.ContestKey)
	assert.Equal(t, "Contest One", result.ContestName)

	want := "precinct_id,registered_voters,contest_name,total_votes_cast," +
		"A - Election Day,A - Absentee,B - Election Day,B - Absentee\n" +
		"P1,100,Contest One,21,10,2,8,1\n"
	assert.Equal(t, want, out.String())

	assert.Equal(t, Stats{
		Candidates:     2,
		VoteTypes:      2,
		Precincts:      1,
		Columns:        8,
		ProcessingTime: result.Stats.ProcessingTime,
	}, result.Stats)
}

func TestCompileRecoversMalformedInput(t *testing.T) {
	doc := parseFixture(t, "malformed.xml")
	var tally numeric.Tally

	export, err := Compile(doc, clarity.Selector{ContestKey: "10"}, &tally)
	require.NoError(t, err)

	want := &types.Table{
		Header: []string{
			"precinct_id", "registered_voters", "contest_name", "total_votes_cast",
			`Jane "JJ" Doe - Election Day`, `Jane "JJ" Doe - Provisional`,
			"Choice 2 - Election Day", "Choice 2 - Provisional",
		},
		Rows: [][]string{
			{"0001", "0", "Sheriff, County", "600", "0", "0", "0", "0"},
			{"0002", "", "Sheriff, County", "", "7", "0", "0", "0"},
		},
	}
	if diff := cmp.Diff(want, export.Table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Election Day", "Provisional"}, export.VoteTypes)
	assert.Equal(t, 1, tally.Count("votes"))
	assert.Equal(t, 1, tally.Count("totalVoters"))
	assert.Equal(t, 0, tally.Count("ballotsCast"))
}

func TestRunQuotesCSVFields(t *testing.T) {
	var out bytes.Buffer
	result := New("testdata/malformed.xml", Options{
		Selector: clarity.Selector{ContestKey: "10"},
		Stdout:   &out,
	}, nil).Run()
	require.NoError(t, result.Error)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `precinct_id,registered_voters,contest_name,total_votes_cast,`+
		`"Jane ""JJ"" Doe - Election Day","Jane ""JJ"" Doe - Provisional",`+
		`Choice 2 - Election Day,Choice 2 - Provisional`, lines[0])
	assert.Equal(t, `0002,,"Sheriff, County",,7,0,0,0`, lines[2])
	assert.Equal(t, 2, result.Stats.MalformedValues)
	assert.Equal(t, 1, result.Stats.UnmatchedPrecincts)
}

func TestCompileSharedSchemaAcrossCandidates(t *testing.T) {
	doc := &clarity.Document{Contests: []clarity.Contest{{
		Key:  "1",
		Text: "Mayor",
		Choices: []clarity.Choice{
			{Key: "a", Text: "Ann", VoteTypes: []clarity.VoteType{
				{Name: "Election Day", Precincts: []clarity.PrecinctVote{{Name: "P2", Votes: "3"}}},
			}},
			{Key: "b", Text: "Bo", VoteTypes: []clarity.VoteType{
				{Name: "Absentee", Precincts: []clarity.PrecinctVote{{Name: "P1", Votes: "4"}}},
				{Name: "Election Day", Precincts: []clarity.PrecinctVote{{Name: "P2", Votes: "5"}}},
			}},
			{Key: "c", Text: "Cy"},
		},
	}}}

	export, err := Compile(doc, clarity.Selector{ChoiceKey: "b"}, &numeric.Tally{})
	require.NoError(t, err)

	table := export.Table
	candidateColumns := len(table.Header) - len(types.FixedColumns)
	assert.Equal(t, 3*2, candidateColumns)
	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Header))
		for _, cell := range row[len(types.FixedColumns):] {
			assert.NotEmpty(t, cell, "vote cells are never empty")
		}
		assert.Equal(t, "", row[1], "no turnout section means unknown registration")
		assert.Equal(t, "", row[3], "no turnout section means unknown ballots cast")
	}

	assert.Equal(t, []string{
		"precinct_id", "registered_voters", "contest_name", "total_votes_cast",
		"Ann - Election Day", "Ann - Absentee",
		"Bo - Election Day", "Bo - Absentee",
		"Cy - Election Day", "Cy - Absentee",
	}, table.Header)
	assert.Equal(t, [][]string{
		{"P2", "", "Mayor", "", "3", "0", "5", "0", "0", "0"},
		{"P1", "", "Mayor", "", "0", "0", "0", "4", "0", "0"},
	}, table.Rows)
}

func TestCompileAccumulatesRepeatedVoteTypes(t *testing.T) {
	doc := &clarity.Document{Contests: []clarity.Contest{{
		Key:  "1",
		Text: "Council",
		Choices: []clarity.Choice{{Key: "a", Text: "A", VoteTypes: []clarity.VoteType{
			{Name: "Mail", Precincts: []clarity.PrecinctVote{{Name: "P1", Votes: "6"}}},
			{Name: "Mail", Precincts: []clarity.PrecinctVote{{Name: "P1", Votes: "4"}, {Name: "P1", Votes: "1"}}},
		}}},
	}}}

	export, err := Compile(doc, clarity.Selector{ContestKey: "1"}, &numeric.Tally{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mail"}, export.VoteTypes)
	assert.Equal(t, [][]string{{"P1", "", "Council", "", "11"}}, export.Table.Rows)
}

func TestCompileKeepsSameNamedChoicesApart(t *testing.T) {
	doc := &clarity.Document{Contests: []clarity.Contest{{
		Key: "1",
		Choices: []clarity.Choice{
			{Key: "w1", Text: "Write-In", VoteTypes: []clarity.VoteType{
				{Name: "Total", Precincts: []clarity.PrecinctVote{{Name: "P1", Votes: "2"}}},
			}},
			{Key: "w2", Text: "Write-In", VoteTypes: []clarity.VoteType{
				{Name: "Total", Precincts: []clarity.PrecinctVote{{Name: "P1", Votes: "5"}}},
			}},
		},
	}}}

	export, err := Compile(doc, clarity.Selector{ContestKey: "1"}, &numeric.Tally{})
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "", "", "", "2", "5"}, export.Table.Rows[0])
}

func TestCompileFailures(t *testing.T) {
	doc := parseFixture(t, "malformed.xml")
	detail := parseFixture(t, "detail.xml")

	tests := []struct {
		name     string
		doc      *clarity.Document
		sel      clarity.Selector
		wantErr  error
		wantCode int
	}{
		{name: "no choices", doc: doc, sel: clarity.Selector{ContestKey: "11"}, wantErr: ErrEmptyContest, wantCode: ExitEmpty},
		{name: "no vote types", doc: doc, sel: clarity.Selector{ContestKey: "12"}, wantErr: ErrNoVoteTypeData, wantCode: ExitNoVoteTypes},
		{name: "unknown contest", doc: detail, sel: clarity.Selector{ContestKey: "nope"}, wantErr: clarity.ErrNotFound, wantCode: ExitLocate},
		{name: "inconsistent", doc: detail, sel: clarity.Selector{ContestKey: "c2", ChoiceKey: "a"}, wantErr: clarity.ErrInconsistent, wantCode: ExitLocate},
		{name: "ambiguous", doc: detail, sel: clarity.Selector{ChoiceKey: "yes"}, wantErr: clarity.ErrAmbiguous, wantCode: ExitLocate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			export, err := Compile(tt.doc, tt.sel, &numeric.Tally{})
			assert.Nil(t, export)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, ExitCode(err))
		})
	}
}

func TestRunWritesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.csv")

	result := New("testdata/detail.xml", Options{
		Selector:   clarity.Selector{ChoiceKey: "yes"},
		OutputPath: output,
	}, nil).Run()

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, clarity.ErrAmbiguous)
	assert.Empty(t, result.OutputFile)
	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err), "no output file should be created")
}

func TestRunParseFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xml")
	require.NoError(t, os.WriteFile(path, []byte("<ElectionResult><Contest>"), 0644))

	result := New(path, Options{Selector: clarity.Selector{ContestKey: "1"}}, nil).Run()
	assert.ErrorIs(t, result.Error, clarity.ErrParse)
	assert.Equal(t, ExitParse, ExitCode(result.Error))
}

func TestRunWritesFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "nested", "wake.csv")

	result := New("testdata/detail.xml", Options{
		Selector:   clarity.Selector{ChoiceKey: "a"},
		OutputPath: output,
	}, nil).Run()
	require.NoError(t, result.Error)
	assert.Equal(t, output, result.OutputFile)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "precinct_id,registered_voters,contest_name,total_votes_cast,A - Election Day"))
	assert.True(t, strings.HasSuffix(string(data), "P1,100,Contest One,21,10,2,8,1\n"))

	entries, err := os.ReadDir(filepath.Dir(output))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestRunOverwritesExistingFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(output, []byte("stale contents that are longer than the new table\n"), 0644))

	result := New("testdata/detail.xml", Options{
		Selector:   clarity.Selector{ContestKey: "c2"},
		OutputPath: output,
	}, nil).Run()
	require.NoError(t, result.Error)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "precinct_id,registered_voters,contest_name,total_votes_cast,"+
		"For - Election Day,Against - Election Day\n"+
		"P2,200,Contest Two,129,40,35\n", string(data))
}

func TestRunWritesXLSX(t *testing.T) {
	output := filepath.Join(t.TempDir(), "wake.xlsx")

	result := New("testdata/detail.xml", Options{
		Selector:   clarity.Selector{ContestKey: "c1"},
		OutputPath: output,
		Format:     tablewriter.FormatXLSX,
	}, nil).Run()
	require.NoError(t, result.Error)

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExitCodeDefaults(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitLocate, ExitCode(clarity.ErrNoSelector))
	assert.Equal(t, ExitOther, ExitCode(ErrInvalidTable))
}

func TestRunClampsOverflowingVotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detail.xml")
	doc := fmt.Sprintf(`<ElectionResult><Contest key="k" text="X"><Choice key="a" text="A">`+
		`<VoteType name="T"><Precinct name="P1" votes="%d"/><Precinct name="P1" votes="1"/></VoteType>`+
		`</Choice></Contest></ElectionResult>`, math.MaxInt)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	var out bytes.Buffer
	result := New(path, Options{Selector: clarity.Selector{ContestKey: "k"}, Stdout: &out}, nil).Run()

	require.NoError(t, result.Error)
	assert.Equal(t, fmt.Sprintf("precinct_id,registered_voters,contest_name,total_votes_cast,A - T\nP1,,X,,%d\n", math.MaxInt), out.String())
	assert.Equal(t, 1, result.Stats.MalformedValues)
}
