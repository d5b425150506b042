package report_test

import (
	"context"
	"errors"
	"iter"
	"slices"
	"strings"
	"sync"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	tfs "gotest.tools/v3/fs"

	"github.com/idelchi/treewalk/internal/report"
	"github.com/idelchi/treewalk/internal/treewalk"
)

func seqOf(entries []treewalk.Entry, tail error) iter.Seq2[treewalk.Entry, error] {
	return func(yield func(treewalk.Entry, error) bool) {
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}

		if tail != nil {
			yield(treewalk.Entry{}, tail)
		}
	}
}

func render(t *testing.T, rep *report.Report, locale string) string {
	t.Helper()

	var sb strings.Builder
	assert.NilError(t, rep.WriteText(&sb, locale))

	return sb.String()
}

func TestRenderSampleTree(t *testing.T) {
	dir := tfs.NewDir(t, "report",
		tfs.WithFile("a", "hello"),
		tfs.WithDir("b", tfs.WithFile("c", "0123456789")),
	)

	rep, err := report.Render(treewalk.Walk(context.Background(), dir.Path(), treewalk.Options{}))
	assert.NilError(t, err)

	assert.Check(t, is.DeepEqual(rep.Lines, []string{"a => 5\n", "b => 0\n", "b/c => 10\n"}))
	assert.Check(t, is.DeepEqual(rep.Stats, treewalk.Stats{FileCount: 2, TotalBytes: 15}))
	assert.Check(t, is.Equal(render(t, rep, ""), "a => 5\nb => 0\nb/c => 10\nTotal: 2 files, 15 bytes\n"))
}

func TestRenderEmptyDirectory(t *testing.T) {
	dir := tfs.NewDir(t, "report")

	rep, err := report.Render(treewalk.Walk(context.Background(), dir.Path(), treewalk.Options{}))
	assert.NilError(t, err)

	assert.Check(t, is.Len(rep.Lines, 0))
	assert.Check(t, is.Equal(render(t, rep, "en"), "Total: 0 files, 0 bytes\n"))
}

func TestRenderIsDeterministic(t *testing.T) {
	entries := []treewalk.Entry{
		{Path: "z", Size: 1},
		{Path: "a/b", Size: 2},
		{Path: "a", IsDir: true},
		{Path: "B", Size: 3},
		{Path: "a b", Size: 4},
	}

	first, err := report.Render(seqOf(entries, nil))
	assert.NilError(t, err)

	shuffled := slices.Clone(entries)
	slices.Reverse(shuffled)

	second, err := report.Render(seqOf(shuffled, nil))
	assert.NilError(t, err)

	assert.Check(t, is.DeepEqual(first, second))
	assert.Check(t, is.DeepEqual(first.Lines, []string{
		"B => 3\n",
		"a => 0\n",
		"a b => 4\n",
		"a/b => 2\n",
		"z => 1\n",
	}))
}

func TestRenderPropagatesUpstreamError(t *testing.T) {
	boom := errors.New("boom")

	rep, err := report.Render(seqOf([]treewalk.Entry{{Path: "a"}}, boom))
	assert.Check(t, is.ErrorIs(err, boom))
	assert.Check(t, is.Nil(rep))
}

func TestRenderRootError(t *testing.T) {
	dir := tfs.NewDir(t, "report")

	_, err := report.Render(treewalk.Walk(context.Background(), dir.Join("missing"), treewalk.Options{}))
	assert.Check(t, errors.Is(err, treewalk.ErrNotFound))
}

func TestTrailerLocale(t *testing.T) {
	rep := &report.Report{Stats: treewalk.Stats{FileCount: 1234, TotalBytes: 1234567}}

	testCases := []struct {
		locale string
		want   string
	}{
		{locale: "", want: "Total: 1234 files, 1,234,567 bytes\n"},
		{locale: "en", want: "Total: 1234 files, 1,234,567 bytes\n"},
		{locale: "en-US", want: "Total: 1234 files, 1,234,567 bytes\n"},
		{locale: "de", want: "Total: 1234 files, 1.234.567 bytes\n"},
		{locale: "not a locale!", want: "Total: 1234 files, 1,234,567 bytes\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.locale, func(t *testing.T) {
			assert.Check(t, is.Equal(rep.Trailer(tc.locale), tc.want))
		})
	}
}

func TestReporterConcurrentAdd(t *testing.T) {
	r := report.NewReporter()

	var wg sync.WaitGroup

	for _, p := range []string{"d", "c", "b", "a"} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			r.Add(treewalk.Entry{Path: p, Size: 1})
		}()
	}

	wg.Wait()

	rep := r.Report()
	assert.Check(t, is.DeepEqual(rep.Lines, []string{"a => 1\n", "b => 1\n", "c => 1\n", "d => 1\n"}))
	assert.Check(t, is.DeepEqual(rep.Stats, r.Aggregator().Stats()))
	assert.Check(t, is.Equal(rep.Stats.FileCount, int64(4)))
}

func TestReportEntriesSortedByPath(t *testing.T) {
	rep, err := report.Render(seqOf([]treewalk.Entry{{Path: "b"}, {Path: "a", IsDir: true}}, nil))
	assert.NilError(t, err)

	assert.Check(t, is.DeepEqual(rep.Entries, []treewalk.Entry{{Path: "a", IsDir: true}, {Path: "b"}}))
}
