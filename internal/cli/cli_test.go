package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	tfs "gotest.tools/v3/fs"

	"github.com/idelchi/treewalk/internal/cli"
	"github.com/idelchi/treewalk/internal/report"
	"github.com/idelchi/treewalk/internal/treewalk"
)

func sampleTree(t *testing.T) *tfs.Dir {
	t.Helper()

	return tfs.NewDir(t, "cli",
		tfs.WithFile("a", "hello"),
		tfs.WithDir("b", tfs.WithFile("c", "0123456789")),
	)
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	// Keep config discovery away from the developer's files.
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer

	cmd := cli.New("test").Command()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

func TestTextOutput(t *testing.T) {
	dir := sampleTree(t)

	for _, args := range [][]string{
		{dir.Path()},
		{"--parallel", dir.Path()},
	} {
		stdout, _, err := run(t, args...)
		assert.NilError(t, err)
		assert.Check(t, is.Equal(stdout, "a => 5\nb => 0\nb/c => 10\nTotal: 2 files, 15 bytes\n"))
	}
}

func TestLocaleGrouping(t *testing.T) {
	dir := tfs.NewDir(t, "cli", tfs.WithFile("big", strings.Repeat("x", 1234)))

	stdout, _, err := run(t, dir.Path())
	assert.NilError(t, err)
	assert.Check(t, is.Equal(stdout, "big => 1234\nTotal: 1 files, 1,234 bytes\n"))

	stdout, _, err = run(t, "--locale", "de", dir.Path())
	assert.NilError(t, err)
	assert.Check(t, is.Equal(stdout, "big => 1234\nTotal: 1 files, 1.234 bytes\n"))
}

func TestEnvironmentOverride(t *testing.T) {
	dir := tfs.NewDir(t, "cli", tfs.WithFile("big", strings.Repeat("x", 1234)))

	t.Setenv("TREEWALK_LOCALE", "de")

	stdout, _, err := run(t, dir.Path())
	assert.NilError(t, err)
	assert.Check(t, is.Contains(stdout, "1.234 bytes"))
}

func TestConfigFile(t *testing.T) {
	dir := sampleTree(t)
	cfg := tfs.NewDir(t, "cfg", tfs.WithFile("treewalk.yaml", "output: json\ndot-filter: exact\n"))

	stdout, _, err := run(t, "--config", cfg.Join("treewalk.yaml"), dir.Path())
	assert.NilError(t, err)

	var rep report.Report
	assert.NilError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Check(t, is.DeepEqual(rep.Stats, treewalk.Stats{FileCount: 2, TotalBytes: 15}))
	assert.Check(t, is.DeepEqual(rep.Entries, []treewalk.Entry{
		{Path: "a", Size: 5},
		{Path: "b", IsDir: true},
		{Path: "b/c", Size: 10},
	}))
}

func TestMissingConfigFile(t *testing.T) {
	dir := sampleTree(t)

	_, _, err := run(t, "--config", dir.Join("nope.yaml"), dir.Path())
	assert.Check(t, is.ErrorContains(err, "reading config file"))
}

func TestTableOutput(t *testing.T) {
	dir := sampleTree(t)

	stdout, _, err := run(t, "-o", "table", "--top", "1", dir.Path())
	assert.NilError(t, err)
	assert.Check(t, is.Contains(stdout, "'b/c'"))
	assert.Check(t, !strings.Contains(stdout, "'a'"), stdout)
	assert.Check(t, is.Contains(stdout, "Total files:"))
	assert.Check(t, is.Contains(stdout, "15 B (15 bytes)"))
}

func TestFilterFlags(t *testing.T) {
	dir := sampleTree(t)

	stdout, _, err := run(t, "--depth", "1", "--exclude", "^a$", dir.Path())
	assert.NilError(t, err)
	assert.Check(t, is.Equal(stdout, "b => 0\nTotal: 0 files, 0 bytes\n"))

	stdout, _, err = run(t, "--min-size", "6B", dir.Path())
	assert.NilError(t, err)
	assert.Check(t, is.Equal(stdout, "b => 0\nb/c => 10\nTotal: 1 files, 10 bytes\n"))
}

func TestDebugLogsExcludedPaths(t *testing.T) {
	dir := sampleTree(t)

	_, stderr, err := run(t, "--debug", "--exclude", "^a$", dir.Path())
	assert.NilError(t, err)
	assert.Check(t, is.Contains(stderr, "excluding path"))
}

func TestInvalidFlags(t *testing.T) {
	dir := sampleTree(t)

	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "output", args: []string{"-o", "xml"}, want: `invalid output format "xml"`},
		{name: "depth", args: []string{"--depth=-1"}, want: "depth cannot be negative"},
		{name: "dot filter", args: []string{"--dot-filter", "prefix"}, want: "invalid dot filter"},
		{name: "min size", args: []string{"--min-size", "lots"}, want: "invalid min-size"},
		{name: "exclude", args: []string{"--exclude", "("}, want: "compiling exclusion pattern"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := run(t, append(tc.args, dir.Path())...)
			assert.Check(t, is.ErrorContains(err, tc.want))
			assert.Check(t, is.Equal(stdout, ""))
		})
	}
}

func TestRootErrorProducesNoOutput(t *testing.T) {
	dir := sampleTree(t)

	stdout, _, err := run(t, dir.Join("missing"))
	assert.Check(t, errors.Is(err, treewalk.ErrNotFound), "got: %v", err)
	assert.Check(t, is.Equal(stdout, ""))
}
