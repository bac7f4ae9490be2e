// =============================================================================
// Clarity to CSV - Configuration Module
// =============================================================================
//
// This module loads the race configuration used by the 'process' and
// 'analyze' commands. A configuration file holds global settings plus a set
// of elections, each with named races:
//
//   settings:
//     output_dir: ./output
//   elections:
//     2024_general_wake:
//       president:
//         file: ./data/wake_detail.xml
//         contest_key: "1"
//         candidate_a_column: Trump
//         candidate_b_column: Harris
//
// FORMATS:
//   Files ending in .toml are decoded as TOML, everything else as YAML.
//
// MISSING FILES:
//   A missing configuration file is not an error. Load returns the defaults
//   and reports that no file was found, so single-file commands work without
//   any configuration.
//
// =============================================================================

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
	"github.com/ginjaninja78/clarity-to-csv/internal/tablewriter"
	"github.com/ginjaninja78/clarity-to-csv/internal/types"
	"github.com/ginjaninja78/clarity-to-csv/pkg/utils"
)

// ErrRaceNotFound is returned when a race reference names no configured race.
var ErrRaceNotFound = errors.New("race not found")

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config is the full configuration file.
type Config struct {
	// Settings are the global options.
	Settings Settings `yaml:"settings" toml:"settings"`

	// Elections maps an election key to its races, keyed by race name.
	Elections map[string]map[string]Race `yaml:"elections" toml:"elections"`
}

// Settings holds the global options.
type Settings struct {
	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is where exported tables and summary logs are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// OutputNameFormat builds the file name for races without an explicit
	// output path.
	// Placeholders:
	//   {election}  - Election key
	//   {race}      - Race key
	//   {contest}   - Contest key (empty when the race selects by choice)
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	// Default: "{election}_{race}.csv"
	OutputNameFormat string `yaml:"output_name_format" toml:"output_name_format"`

	// OutputFormat is "csv" or "xlsx".
	// Default: "csv"
	OutputFormat string `yaml:"output_format" toml:"output_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of races exported at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" toml:"max_concurrency"`

	// ContinueOnError keeps exporting the remaining races after a failure.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error" toml:"continue_on_error"`

	// =========================================================================
	// ANALYSIS SETTINGS
	// =========================================================================

	// MinRegisteredVoters drops smaller precincts from the derived table.
	// Zero disables the filter.
	MinRegisteredVoters float64 `yaml:"min_registered_voters" toml:"min_registered_voters"`

	// MinTotalVotes drops precincts with fewer votes cast. Zero disables the
	// filter.
	MinTotalVotes float64 `yaml:"min_total_votes" toml:"min_total_votes"`
}

// Race configures one contest of one election.
type Race struct {
	// File is the Clarity detail XML the race is exported from.
	File string `yaml:"file" toml:"file"`

	// ContestKey and ChoiceKey select the contest. At least one is needed
	// for the race to be exported.
	ContestKey string `yaml:"contest_key" toml:"contest_key"`
	ChoiceKey  string `yaml:"choice_key" toml:"choice_key"`

	// Output overrides the generated output path. It is also the table the
	// analyze command reads for this race.
	Output string `yaml:"output" toml:"output"`

	// Columns used by the analyze command.
	CandidateAColumn   string `yaml:"candidate_a_column" toml:"candidate_a_column"`
	CandidateBColumn   string `yaml:"candidate_b_column" toml:"candidate_b_column"`
	TotalColumn        string `yaml:"total_column" toml:"total_column"`
	RegistrationColumn string `yaml:"registration_column" toml:"registration_column"`
}

// Selector returns the contest selector for the race.
func (r Race) Selector() clarity.Selector {
	return clarity.Selector{ContestKey: r.ContestKey, ChoiceKey: r.ChoiceKey}
}

// Exportable reports whether the race names a source file and a selector.
func (r Race) Exportable() bool {
	return r.File != "" && !r.Selector().IsZero()
}

// RaceEntry is a race together with its keys.
type RaceEntry struct {
	Election string
	Name     string
	Race     Race
}

// Ref returns the "election/race" reference for the entry.
func (e RaceEntry) Ref() string {
	return e.Election + "/" + e.Name
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration with every default applied and no races.
func Default() Config {
	return Config{
		Settings: Settings{
			OutputDir:        "./output",
			OutputNameFormat: "{election}_{race}.csv",
			OutputFormat:     string(tablewriter.FormatCSV),
			LogLevel:         "info",
			MaxConcurrency:   4,
			ContinueOnError:  true,
		},
		Elections: map[string]map[string]Race{},
	}
}

// applyDefaults fills settings that were explicitly left empty in the file.
func applyDefaults(cfg *Config) {
	defaults := Default()
	if cfg.Settings.OutputDir == "" {
		cfg.Settings.OutputDir = defaults.Settings.OutputDir
	}
	if cfg.Settings.OutputNameFormat == "" {
		cfg.Settings.OutputNameFormat = defaults.Settings.OutputNameFormat
	}
	if cfg.Settings.OutputFormat == "" {
		cfg.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if cfg.Settings.LogLevel == "" {
		cfg.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if cfg.Settings.MaxConcurrency == 0 {
		cfg.Settings.MaxConcurrency = defaults.Settings.MaxConcurrency
	}
	if cfg.Elections == nil {
		cfg.Elections = map[string]map[string]Race{}
	}

	for election, races := range cfg.Elections {
		for name, race := range races {
			if race.TotalColumn == "" {
				race.TotalColumn = types.ColumnTotalVotesCast
			}
			if race.RegistrationColumn == "" {
				race.RegistrationColumn = types.ColumnRegisteredVoters
			}
			cfg.Elections[election][name] = race
		}
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads and validates the configuration at path.
//
// PARAMETERS:
//   - path: The configuration file. ".toml" selects TOML, anything else YAML.
//
// RETURNS:
//   - The configuration. Defaults are used for anything the file omits.
//   - Whether the file existed.
//   - An error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, false, nil
		}
		return nil, false, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := decode(path, data, &cfg); err != nil {
		return nil, true, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, true, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, true, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		return decoder.Decode(cfg)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the settings and every race.
func (c *Config) Validate() error {
	var problems []string

	if _, err := tablewriter.ParseFormat(c.Settings.OutputFormat); err != nil {
		problems = append(problems, err.Error())
	}
	if !logLevels[strings.ToLower(c.Settings.LogLevel)] {
		problems = append(problems, fmt.Sprintf("log_level %q must be debug, info, warn or error", c.Settings.LogLevel))
	}
	if c.Settings.MaxConcurrency < 1 {
		problems = append(problems, "max_concurrency must be at least 1")
	}
	if c.Settings.MinRegisteredVoters < 0 || c.Settings.MinTotalVotes < 0 {
		problems = append(problems, "minimum thresholds must not be negative")
	}

	for _, entry := range c.Races() {
		if strings.Contains(entry.Election, "/") || strings.Contains(entry.Name, "/") {
			problems = append(problems, fmt.Sprintf("%s: election and race keys must not contain '/'", entry.Ref()))
		}
		if entry.Race.File != "" && entry.Race.Selector().IsZero() {
			problems = append(problems, fmt.Sprintf("%s: contest_key or choice_key is required when file is set", entry.Ref()))
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// =============================================================================
// RACE LOOKUP
// =============================================================================

// Races returns every configured race ordered by election then race key.
func (c *Config) Races() []RaceEntry {
	var entries []RaceEntry
	for election, races := range c.Elections {
		for name, race := range races {
			entries = append(entries, RaceEntry{Election: election, Name: name, Race: race})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Election != entries[j].Election {
			return entries[i].Election < entries[j].Election
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Race looks up a race by its "election/race" reference.
func (c *Config) Race(ref string) (RaceEntry, error) {
	election, name, ok := strings.Cut(ref, "/")
	if !ok || election == "" || name == "" {
		return RaceEntry{}, fmt.Errorf("race reference %q must look like election/race", ref)
	}
	race, ok := c.Elections[election][name]
	if !ok {
		refs := make([]string, 0)
		for _, entry := range c.Races() {
			refs = append(refs, entry.Ref())
		}
		if len(refs) == 0 {
			return RaceEntry{}, fmt.Errorf("%w: %s (no races configured)", ErrRaceNotFound, ref)
		}
		return RaceEntry{}, fmt.Errorf("%w: %s (available: %s)", ErrRaceNotFound, ref, strings.Join(refs, ", "))
	}
	return RaceEntry{Election: election, Name: name, Race: race}, nil
}

// Format returns the configured output format.
func (s Settings) Format() tablewriter.Format {
	format, err := tablewriter.ParseFormat(s.OutputFormat)
	if err != nil {
		return tablewriter.FormatCSV
	}
	return format
}

// OutputPath returns where the race's table is written: the race's own
// output path when set, otherwise output_dir joined with the generated name.
// The extension follows the configured output format.
func (c *Config) OutputPath(entry RaceEntry) string {
	if entry.Race.Output != "" {
		return entry.Race.Output
	}
	name := utils.GenerateOutputFileName(c.Settings.OutputNameFormat, c.Settings.Format().Extension(), map[string]string{
		"election": entry.Election,
		"race":     entry.Name,
		"contest":  entry.Race.ContestKey,
	})
	return filepath.Join(c.Settings.OutputDir, name)
}

// TablePath returns the exported table the analyze command reads for the
// race. It fails when the name format makes the path unpredictable.
func (c *Config) TablePath(entry RaceEntry) (string, error) {
	if entry.Race.Output != "" {
		return entry.Race.Output, nil
	}
	if utils.HasVolatilePlaceholders(c.Settings.OutputNameFormat) {
		return "", fmt.Errorf("%s: set output for this race; output_name_format %q does not give a stable path",
			entry.Ref(), c.Settings.OutputNameFormat)
	}
	return c.OutputPath(entry), nil
}
