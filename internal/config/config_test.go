package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
	"github.com/ginjaninja78/clarity-to-csv/internal/tablewriter"
)

const yamlConfig = `
settings:
  output_dir: out
  output_format: xlsx
  max_concurrency: 2
  continue_on_error: false
  min_registered_voters: 100
elections:
  2024_general_wake:
    president:
      file: wake.xml
      contest_key: "1"
      candidate_a_column: Trump
      candidate_b_column: Harris
    attorney_general:
      output: tables/ag.xlsx
      candidate_a_column: Bishop
      candidate_b_column: Jackson
      total_column: Total Votes
      registration_column: Registered
`

const tomlConfig = `
[settings]
output_name_format = "{race}_{contest}.csv"

[elections.primary.mayor]
file = "primary.xml"
choice_key = "17"
`

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, exists, err := Load(writeConfig(t, "clarity.yaml", yamlConfig))
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, "out", cfg.Settings.OutputDir)
	assert.Equal(t, tablewriter.FormatXLSX, cfg.Settings.Format())
	assert.Equal(t, 2, cfg.Settings.MaxConcurrency)
	assert.False(t, cfg.Settings.ContinueOnError)
	assert.Equal(t, 100.0, cfg.Settings.MinRegisteredVoters)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "{election}_{race}.csv", cfg.Settings.OutputNameFormat)

	entries := cfg.Races()
	require.Len(t, entries, 2)
	assert.Equal(t, "2024_general_wake/attorney_general", entries[0].Ref())
	assert.Equal(t, "2024_general_wake/president", entries[1].Ref())

	president := entries[1].Race
	assert.True(t, president.Exportable())
	assert.Equal(t, clarity.Selector{ContestKey: "1"}, president.Selector())
	assert.Equal(t, "total_votes_cast", president.TotalColumn)
	assert.Equal(t, "registered_voters", president.RegistrationColumn)

	ag := entries[0].Race
	assert.False(t, ag.Exportable())
	assert.Equal(t, "Total Votes", ag.TotalColumn)
	assert.Equal(t, "Registered", ag.RegistrationColumn)
}

func TestLoadTOML(t *testing.T) {
	cfg, exists, err := Load(writeConfig(t, "clarity.toml", tomlConfig))
	require.NoError(t, err)
	assert.True(t, exists)

	assert.True(t, cfg.Settings.ContinueOnError, "defaults survive a partial file")
	assert.Equal(t, 4, cfg.Settings.MaxConcurrency)

	entry, err := cfg.Race("primary/mayor")
	require.NoError(t, err)
	assert.Equal(t, clarity.Selector{ChoiceKey: "17"}, entry.Race.Selector())
	assert.Equal(t, filepath.Join("output", "mayor_.csv"), cfg.OutputPath(entry))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, exists, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, Default(), *cfg)
	assert.Empty(t, cfg.Races())
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, exists, err := Load(writeConfig(t, "clarity.yaml", ""))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 4, cfg.Settings.MaxConcurrency)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contents string
		wantMsg  string
	}{
		{name: "unknown yaml key", file: "c.yaml", contents: "settings:\n  outptu_dir: x\n", wantMsg: "failed to parse"},
		{name: "unknown toml key", file: "c.toml", contents: "[settings]\noutptu_dir = \"x\"\n", wantMsg: "failed to parse"},
		{name: "bad format", file: "c.yaml", contents: "settings:\n  output_format: json\n", wantMsg: "unsupported output format"},
		{name: "bad level", file: "c.yaml", contents: "settings:\n  log_level: loud\n", wantMsg: "log_level"},
		{name: "negative concurrency", file: "c.yaml", contents: "settings:\n  max_concurrency: -1\n", wantMsg: "max_concurrency"},
		{name: "negative threshold", file: "c.yaml", contents: "settings:\n  min_total_votes: -5\n", wantMsg: "thresholds"},
		{
			name:     "file without selector",
			file:     "c.yaml",
			contents: "elections:\n  e:\n    r:\n      file: a.xml\n",
			wantMsg:  "e/r: contest_key or choice_key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tt.file, tt.contents))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRaceLookup(t *testing.T) {
	cfg, _, err := Load(writeConfig(t, "clarity.yaml", yamlConfig))
	require.NoError(t, err)

	_, err = cfg.Race("president")
	assert.ErrorContains(t, err, "must look like election/race")

	_, err = cfg.Race("2024_general_wake/sheriff")
	assert.ErrorIs(t, err, ErrRaceNotFound)
	assert.ErrorContains(t, err, "2024_general_wake/attorney_general, 2024_general_wake/president")

	empty := Default()
	_, err = empty.Race("a/b")
	assert.ErrorContains(t, err, "no races configured")
}

func TestOutputAndTablePaths(t *testing.T) {
	cfg, _, err := Load(writeConfig(t, "clarity.yaml", yamlConfig))
	require.NoError(t, err)

	president, err := cfg.Race("2024_general_wake/president")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "2024_general_wake_president.xlsx"), cfg.OutputPath(president))

	path, err := cfg.TablePath(president)
	require.NoError(t, err)
	assert.Equal(t, cfg.OutputPath(president), path)

	ag, err := cfg.Race("2024_general_wake/attorney_general")
	require.NoError(t, err)
	path, err = cfg.TablePath(ag)
	require.NoError(t, err)
	assert.Equal(t, "tables/ag.xlsx", path)

	cfg.Settings.OutputNameFormat = "{race}_{uuid}.csv"
	_, err = cfg.TablePath(president)
	assert.ErrorContains(t, err, "set output for this race")
}
