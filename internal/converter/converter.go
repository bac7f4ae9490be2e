// =============================================================================
// Clarity to CSV - Converter Module
// =============================================================================
//
// This module contains the core export logic. It runs the whole pipeline for
// a single race, from the detail XML to the precinct table.
//
// CONVERSION PIPELINE:
//   1. Parse the detail XML (whole document, in memory)
//   2. Locate the contest from the contest key and/or choice key
//   3. Load turnout metadata (independent of the contest)
//   4. Collect the vote-type column schema from the contest's choices
//   5. Aggregate precinct votes per candidate and vote type
//   6. Build the header and one row per precinct
//   7. Validate the table
//   8. Write CSV or XLSX to a file or standard output
//
// Every step runs once, in order. Any failure before step 8 ends the run and
// nothing is written.
//
// RESOURCES:
//   A run holds the parsed document, O(document size), plus the aggregation
//   table, O(precincts x candidates x vote types). The second term is the
//   scaling ceiling for very large contests.
//
// CONCURRENCY:
//   A Converter is single-use and single-threaded. Independent races can be
//   exported in parallel with RunBatch, one Converter each.
//
// =============================================================================

package converter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
	"github.com/ginjaninja78/clarity-to-csv/internal/numeric"
	"github.com/ginjaninja78/clarity-to-csv/internal/tablewriter"
	"github.com/ginjaninja78/clarity-to-csv/internal/types"
	"github.com/ginjaninja78/clarity-to-csv/internal/validation"
)

// StdoutPath is the OutputFile reported when the table went to Stdout.
const StdoutPath = "-"

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of exporting one race.
type Result struct {
	// Name identifies the race in batch runs ("election/race").
	Name string

	// FilePath is the detail XML that was read.
	FilePath string

	// OutputFile is where the table was written, StdoutPath for standard
	// output, or empty if the run failed.
	OutputFile string

	// ContestKey and ContestName describe the located contest.
	ContestKey  string
	ContestName string

	// Success indicates whether the export completed.
	Success bool

	// Error is the failure, if any.
	Error error

	// Stats contains counts gathered along the way.
	Stats Stats
}

// Stats contains statistics about an export.
type Stats struct {
	Candidates         int
	VoteTypes          int
	Precincts          int
	Columns            int
	UnmatchedPrecincts int
	MalformedValues    int
	ProcessingTime     time.Duration
}

// =============================================================================
// LOGGER
// =============================================================================

// Logger is the structured logger the converter reports to. Arguments after
// the message are alternating keys and values.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// raceLogger adds the race name to every entry.
type raceLogger struct {
	Logger
	name string
}

func (l raceLogger) Debug(msg string, kv ...interface{}) { l.Logger.Debug(msg, l.with(kv)...) }
func (l raceLogger) Info(msg string, kv ...interface{})  { l.Logger.Info(msg, l.with(kv)...) }
func (l raceLogger) Warn(msg string, kv ...interface{})  { l.Logger.Warn(msg, l.with(kv)...) }
func (l raceLogger) Error(msg string, kv ...interface{}) { l.Logger.Error(msg, l.with(kv)...) }

func (l raceLogger) with(kv []interface{}) []interface{} {
	return append([]interface{}{"race", l.name}, kv...)
}

// =============================================================================
// COMPILATION
// =============================================================================

// Export is a compiled race, ready to be written.
type Export struct {
	Contest   *clarity.Contest
	VoteTypes []string
	Turnout   Turnout
	Table     *types.Table
}

// Compile runs the locate, metadata, vote-type, aggregation and row-building
// steps against an already parsed document. Malformed numeric attributes are
// recovered as 0 and recorded in tally.
func Compile(doc *clarity.Document, sel clarity.Selector, tally *numeric.Tally) (*Export, error) {
	contest, err := clarity.Locate(doc, sel)
	if err != nil {
		return nil, err
	}

	turnout := LoadTurnout(doc, tally)

	if len(contest.Choices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContest, contest.DisplayName())
	}
	voteTypes := CollectVoteTypes(contest.Choices)
	if len(voteTypes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVoteTypeData, contest.DisplayName())
	}

	agg := Aggregate(contest.Choices, tally)
	table := BuildTable(contest, agg, turnout, voteTypes)

	return &Export{
		Contest:   contest,
		VoteTypes: voteTypes,
		Turnout:   turnout,
		Table:     table,
	}, nil
}

// =============================================================================
// CONVERTER
// =============================================================================

// Options configures a single export.
type Options struct {
	// Name labels the run in logs and batch results.
	Name string

	// Selector picks the contest.
	Selector clarity.Selector

	// OutputPath is the destination file. Empty means Stdout.
	OutputPath string

	// Format is the output encoding. Empty means CSV.
	Format tablewriter.Format

	// Stdout receives the table when OutputPath is empty. Defaults to
	// os.Stdout.
	Stdout io.Writer
}

// Converter exports one race from one detail XML file.
type Converter struct {
	xmlPath string
	opts    Options
	logger  Logger
	tally   numeric.Tally
}

// New creates a Converter. A nil logger discards log output.
func New(xmlPath string, opts Options, logger Logger) *Converter {
	if logger == nil {
		logger = nopLogger{}
	} else if opts.Name != "" {
		logger = raceLogger{Logger: logger, name: opts.Name}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &Converter{
		xmlPath: xmlPath,
		opts:    opts,
		logger:  logger,
	}
}

// Run executes the pipeline and returns its result. It never panics on bad
// input; every failure is reported through Result.Error.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	result = Result{
		Name:     c.opts.Name,
		FilePath: c.xmlPath,
	}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	c.logger.Debug("reading detail report", "path", c.xmlPath)
	doc, err := clarity.ParseFile(c.xmlPath)
	if err != nil {
		result.Error = err
		return result
	}
	c.logger.Debug("parsed detail report",
		"election", doc.ElectionName,
		"region", doc.Region,
		"contests", len(doc.Contests),
	)

	export, err := Compile(doc, c.opts.Selector, &c.tally)
	if err != nil {
		result.Error = err
		return result
	}
	result.ContestKey = export.Contest.Key
	result.ContestName = export.Contest.Text
	result.Stats.Candidates = len(export.Contest.Choices)
	result.Stats.VoteTypes = len(export.VoteTypes)
	result.Stats.Precincts = len(export.Table.Rows)
	result.Stats.Columns = len(export.Table.Header)
	result.Stats.MalformedValues = c.tally.Total()
	c.logger.Info("compiled contest",
		"contest_key", export.Contest.Key,
		"contest", export.Contest.Text,
		"candidates", result.Stats.Candidates,
		"vote_types", export.VoteTypes,
		"precincts", result.Stats.Precincts,
	)
	c.reportRecoveries()

	validationResult := validation.Validate(export.Table, validation.Shape{
		Candidates: len(export.Contest.Choices),
		VoteTypes:  len(export.VoteTypes),
	})
	result.Stats.UnmatchedPrecincts = validationResult.UnmatchedPrecincts
	if validationResult.UnmatchedPrecincts > 0 {
		c.logger.Warn("precincts without turnout metadata",
			"count", validationResult.UnmatchedPrecincts,
		)
	}
	if !validationResult.IsValid {
		for _, ve := range validationResult.Fatal() {
			c.logger.Error("validation error", "detail", ve.Error())
		}
		result.Error = fmt.Errorf("%w: %d error(s)", ErrInvalidTable, validationResult.ErrorCount)
		return result
	}

	output, err := c.write(export.Table)
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = output
	result.Success = true
	c.logger.Info("wrote precinct table", "output", output, "format", c.format())
	return result
}

func (c *Converter) format() tablewriter.Format {
	if c.opts.Format == "" {
		return tablewriter.FormatCSV
	}
	return c.opts.Format
}

func (c *Converter) write(table *types.Table) (string, error) {
	if c.opts.OutputPath == "" {
		return StdoutPath, tablewriter.Write(c.opts.Stdout, table, c.format())
	}
	return c.opts.OutputPath, tablewriter.WriteFile(c.opts.OutputPath, table, c.format())
}

// reportRecoveries logs one warning per attribute that needed coercion.
func (c *Converter) reportRecoveries() {
	for _, field := range c.tally.Fields() {
		c.logger.Warn("recovered malformed numeric values as zero",
			"attribute", field,
			"count", c.tally.Count(field),
		)
	}
}
