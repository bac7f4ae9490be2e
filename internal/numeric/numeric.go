// =============================================================================
// Clarity to CSV - Numeric Coercion
// =============================================================================
//
// Clarity exports carry every count as a string attribute. This package turns
// those attributes into integers on a best-effort basis: anything that is not
// a plain non-negative integer becomes 0 instead of an error, so a single bad
// attribute degrades one cell rather than failing the export.
//
// The Tally type lets callers count those recoveries per attribute so they
// can be reported once at the end of a run.
//
// =============================================================================

package numeric

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Parse converts a raw attribute value to an integer.
//
// RETURNS:
//   - The parsed value, or 0 when the value is empty, non-numeric or negative.
//   - ok is true only when raw held a valid non-negative integer. An empty
//     string reports ok=false with a value of 0.
func Parse(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// Int is Parse without the validity flag.
func Int(raw string) int {
	value, _ := Parse(raw)
	return value
}

// =============================================================================
// RECOVERY TALLY
// =============================================================================

// Tally counts values that were present but could not be parsed, keyed by
// attribute name. Absent attributes are not counted: "no value" is a normal
// state in Clarity exports, a value like "1,204" is not.
//
// The zero value is ready to use and safe for concurrent use.
type Tally struct {
	mu     sync.Mutex
	counts map[string]int
}

// Coerce parses raw like Parse and records a recovery under field when raw was
// non-empty but unusable.
func (t *Tally) Coerce(field, raw string) int {
	value, ok := Parse(raw)
	if !ok && strings.TrimSpace(raw) != "" {
		t.Record(field)
	}
	return value
}

// Record counts one recovery under field.
func (t *Tally) Record(field string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	t.counts[field]++
}

// Count returns the number of recoveries recorded for field.
func (t *Tally) Count(field string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[field]
}

// Total returns the number of recoveries across all fields.
func (t *Tally) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Fields returns the names of fields with at least one recovery, sorted.
func (t *Tally) Fields() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	fields := make([]string, 0, len(t.counts))
	for field := range t.counts {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
