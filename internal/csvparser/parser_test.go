package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReaderNormalizesRows(t *testing.T) {
	input := "\ufeffprecinct_id, registered_voters ,,A - Mail\n" +
		"0001,100,x,5\n" +
		" , , , \n" +
		"0002,,y\n" +
		"0003,7,z,1,extra\n"

	table, err := ParseReader(strings.NewReader(input), Options{})
	require.NoError(t, err)

	wantHeader := []string{"precinct_id", "registered_voters", "Column_3", "A - Mail"}
	wantRows := [][]string{
		{"0001", "100", "x", "5"},
		{"0002", "", "y", ""},
		{"0003", "7", "z", "1"},
	}
	if diff := cmp.Diff(wantHeader, table.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRows, table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReaderDelimiter(t *testing.T) {
	delim, err := ParseDelimiter("semicolon")
	require.NoError(t, err)

	table, err := ParseReader(strings.NewReader("a;b\n\"1,5\";2\n"), Options{Delimiter: delim})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Header)
	assert.Equal(t, [][]string{{"1,5", "2"}}, table.Rows)
}

func TestParseDelimiter(t *testing.T) {
	for name, want := range map[string]rune{"": ',', "tab": '\t', `\t`: '\t', "pipe": '|', ";": ';'} {
		got, err := ParseDelimiter(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseDelimiter("::")
	assert.Error(t, err)
}

func TestParseReaderEmpty(t *testing.T) {
	_, err := ParseReader(strings.NewReader(""), Options{})
	assert.ErrorContains(t, err, "CSV file is empty")
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte("precinct_id,A\nP1,3\n"), 0644))

	table, err := Parse(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, path, table.Source)
	assert.Equal(t, 1, table.Index("A"))
	assert.Equal(t, "3", table.Cell(0, 1))

	_, err = Parse(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.ErrorContains(t, err, "failed to open file")
}
