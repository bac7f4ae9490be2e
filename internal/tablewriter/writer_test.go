package tablewriter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/clarity-to-csv/internal/types"
)

func sampleTable() *types.Table {
	return &types.Table{
		Header: []string{"precinct_id", "registered_voters", "contest_name", "total_votes_cast", `O'Neil "Doc" - Mail`},
		Rows: [][]string{
			{"0012", "100", "Judge, District 3", "21", "7"},
			{"0013", "", "Judge, District 3", "", "0"},
		},
	}
}

func TestWriteCSVQuotesAndTerminatesLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	want := `precinct_id,registered_voters,contest_name,total_votes_cast,"O'Neil ""Doc"" - Mail"` + "\n" +
		`0012,100,"Judge, District 3",21,7` + "\n" +
		`0013,,"Judge, District 3",,0` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatCSV},
		{in: "CSV", want: FormatCSV},
		{in: "xlsx", want: FormatXLSX},
		{in: " Excel ", want: FormatXLSX},
		{in: "json", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatForPath("out/Wake.XLSX", FormatCSV))
	assert.Equal(t, FormatCSV, FormatForPath("out/wake.csv", FormatXLSX))
	assert.Equal(t, FormatXLSX, FormatForPath("out/wake", FormatXLSX))
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
	assert.Equal(t, ".csv", FormatCSV.Extension())
}

func TestWriteFileReplacesDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	require.NoError(t, WriteFile(path, sampleTable(), FormatCSV))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `0012,100,"Judge, District 3",21,7`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileUnknownFormatLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	assert.Error(t, WriteFile(path, sampleTable(), Format("json")))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteXLSXStoresNumbersAndText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteFile(path, sampleTable(), FormatXLSX))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, sampleTable().Header, rows[0])
	assert.Equal(t, "0012", rows[1][0], "precinct ids keep leading zeros")

	votes, err := f.GetCellValue(SheetName, "E2")
	require.NoError(t, err)
	assert.Equal(t, "7", votes)

	blank, err := f.GetCellValue(SheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "", blank)
}
