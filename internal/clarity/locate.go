package clarity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SELECTION
// =============================================================================

// Selector identifies the contest to export. Choice keys are only unique
// inside their own contest, so a bare ChoiceKey may match several contests;
// ContestKey is the way to disambiguate.
type Selector struct {
	ContestKey string
	ChoiceKey  string
}

// IsZero reports whether neither key is set.
func (s Selector) IsZero() bool {
	return s.ContestKey == "" && s.ChoiceKey == ""
}

// String formats the selector for logs and listings.
func (s Selector) String() string {
	var parts []string
	if s.ContestKey != "" {
		parts = append(parts, "contest="+s.ContestKey)
	}
	if s.ChoiceKey != "" {
		parts = append(parts, "choice="+s.ChoiceKey)
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// LOCATE ERRORS
// =============================================================================

// Sentinel errors matched by LocateError through errors.Is.
var (
	ErrNoSelector   = errors.New("you must provide either --contest-key or --choice-key")
	ErrNotFound     = errors.New("contest not found")
	ErrInconsistent = errors.New("choice does not belong to contest")
	ErrAmbiguous    = errors.New("choice key matches multiple contests")
)

// LocateKind classifies a failed lookup.
type LocateKind int

const (
	KindNotFound LocateKind = iota + 1
	KindInconsistent
	KindAmbiguous
)

// LocateError describes why no single contest could be selected.
type LocateError struct {
	Kind     LocateKind
	Selector Selector

	// Candidates lists the display names of every matching contest for
	// KindAmbiguous, sorted and without duplicates.
	Candidates []string
}

func (e *LocateError) Error() string {
	switch e.Kind {
	case KindInconsistent:
		return fmt.Sprintf("Contest '%s' does not contain choice key '%s'.",
			e.Selector.ContestKey, e.Selector.ChoiceKey)
	case KindAmbiguous:
		return fmt.Sprintf("Choice key '%s' found in multiple contests: %s. Use --contest-key to disambiguate.",
			e.Selector.ChoiceKey, strings.Join(e.Candidates, ", "))
	default:
		if e.Selector.ContestKey != "" {
			return fmt.Sprintf("No contest found with key '%s'.", e.Selector.ContestKey)
		}
		return fmt.Sprintf("No contest contains a choice with key '%s'.", e.Selector.ChoiceKey)
	}
}

// Is lets errors.Is match a LocateError against the sentinel for its kind.
func (e *LocateError) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindInconsistent:
		return target == ErrInconsistent
	case KindAmbiguous:
		return target == ErrAmbiguous
	}
	return false
}

// =============================================================================
// LOCATOR
// =============================================================================

// Locate resolves sel to exactly one contest of doc.
//
// With a contest key the contest is looked up by exact key, and a choice key,
// if also given, must belong to it. With only a choice key every contest is
// scanned; the lookup succeeds only when exactly one contest contains it.
func Locate(doc *Document, sel Selector) (*Contest, error) {
	if sel.IsZero() {
		return nil, ErrNoSelector
	}

	if sel.ContestKey != "" {
		contest := doc.FindContest(sel.ContestKey)
		if contest == nil {
			return nil, &LocateError{Kind: KindNotFound, Selector: sel}
		}
		if sel.ChoiceKey != "" && !contest.HasChoice(sel.ChoiceKey) {
			return nil, &LocateError{Kind: KindInconsistent, Selector: sel}
		}
		return contest, nil
	}

	matches := ContestsWithChoice(doc, sel.ChoiceKey)
	switch len(matches) {
	case 0:
		return nil, &LocateError{Kind: KindNotFound, Selector: sel}
	case 1:
		return matches[0], nil
	}

	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, contest := range matches {
		name := contest.DisplayName()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return nil, &LocateError{Kind: KindAmbiguous, Selector: sel, Candidates: names}
}

// ContestsWithChoice returns every contest containing a choice with the given
// key, in document order.
func ContestsWithChoice(doc *Document, choiceKey string) []*Contest {
	var matches []*Contest
	for i := range doc.Contests {
		if doc.Contests[i].HasChoice(choiceKey) {
			matches = append(matches, &doc.Contests[i])
		}
	}
	return matches
}
