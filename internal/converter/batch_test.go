package converter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
)

func TestRunBatchExportsEveryJob(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	jobs := []Job{
		{XMLPath: "testdata/detail.xml", Options: Options{Name: "wake/one", Selector: clarity.Selector{ContestKey: "c1"}, OutputPath: filepath.Join(dir, "one.csv")}},
		{XMLPath: "testdata/detail.xml", Options: Options{Name: "wake/two", Selector: clarity.Selector{ContestKey: "c2"}, OutputPath: filepath.Join(dir, "two.csv")}},
		{XMLPath: "testdata/detail.xml", Options: Options{Name: "wake/bad", Selector: clarity.Selector{ChoiceKey: "yes"}, OutputPath: filepath.Join(dir, "bad.csv")}},
		{XMLPath: "testdata/detail.xml", Options: Options{Name: "wake/three", Selector: clarity.Selector{ContestKey: "c3"}, OutputPath: filepath.Join(dir, "three.csv")}},
	}

	results := RunBatch(jobs, 2, false, nil)

	require.Len(t, results, len(jobs))
	for i, result := range results {
		assert.Equal(t, jobs[i].Options.Name, result.Name, "results keep job order")
	}
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.ErrorIs(t, results[2].Error, clarity.ErrAmbiguous)
	assert.True(t, results[3].Success)
	assert.Equal(t, "Contest Three", results[3].ContestName)
}

func TestRunBatchStopOnErrorSkipsPendingJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	jobs := []Job{
		{XMLPath: "testdata/missing.xml", Options: Options{Name: "first", Selector: clarity.Selector{ContestKey: "c1"}, OutputPath: filepath.Join(dir, "a.csv")}},
		{XMLPath: "testdata/detail.xml", Options: Options{Name: "second", Selector: clarity.Selector{ContestKey: "c1"}, OutputPath: filepath.Join(dir, "b.csv")}},
		{XMLPath: "testdata/detail.xml", Options: Options{Name: "third", Selector: clarity.Selector{ContestKey: "c2"}, OutputPath: filepath.Join(dir, "c.csv")}},
	}

	results := RunBatch(jobs, 1, true, nil)

	require.Len(t, results, 3)
	assert.ErrorIs(t, results[0].Error, clarity.ErrParse)
	assert.ErrorIs(t, results[1].Error, ErrSkipped)
	assert.ErrorIs(t, results[2].Error, ErrSkipped)
	assert.Equal(t, "third", results[2].Name)
}

func TestRunBatchEmpty(t *testing.T) {
	defer goleak.VerifyNone(t)
	assert.Empty(t, RunBatch(nil, 4, false, nil))
}

func TestRunBatchConcurrencyBounds(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	jobs := []Job{
		{XMLPath: "testdata/detail.xml", Options: Options{Name: "one", Selector: clarity.Selector{ContestKey: "c1"}, OutputPath: filepath.Join(dir, "one.csv")}},
		{XMLPath: "testdata/detail.xml", Options: Options{Name: "two", Selector: clarity.Selector{ContestKey: "c2"}, OutputPath: filepath.Join(dir, "two.csv")}},
	}

	for _, concurrency := range []int{0, 1, 16} {
		results := RunBatch(jobs, concurrency, true, nil)
		require.Len(t, results, 2, "concurrency %d", concurrency)
		assert.Equal(t, "one", results[0].Name)
		assert.Equal(t, "two", results[1].Name)
		assert.True(t, results[0].Success && results[1].Success, "concurrency %d", concurrency)
	}
}
