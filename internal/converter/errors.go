package converter

import (
	"errors"

	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
)

// Fatal conditions found after the contest is located.
var (
	ErrEmptyContest   = errors.New("contest contains no choices")
	ErrNoVoteTypeData = errors.New("contest contains no vote type data")
	ErrInvalidTable   = errors.New("compiled table failed validation")
	ErrSkipped        = errors.New("skipped after an earlier failure")
)

// Exit codes reported by the command line for each failure class.
const (
	ExitOK          = 0
	ExitParse       = 1
	ExitLocate      = 2
	ExitEmpty       = 3
	ExitNoVoteTypes = 4
	ExitOther       = 1
)

// ExitCode maps an export error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, clarity.ErrParse):
		return ExitParse
	case errors.Is(err, clarity.ErrNotFound),
		errors.Is(err, clarity.ErrInconsistent),
		errors.Is(err, clarity.ErrAmbiguous),
		errors.Is(err, clarity.ErrNoSelector):
		return ExitLocate
	case errors.Is(err, ErrEmptyContest):
		return ExitEmpty
	case errors.Is(err, ErrNoVoteTypeData):
		return ExitNoVoteTypes
	default:
		return ExitOther
	}
}
