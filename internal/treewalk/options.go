package treewalk

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Entry is one filesystem node discovered during a walk.
type Entry struct {
	// Path is the slash separated path relative to the walk root.
	Path string `json:"path"`
	// Size is the size in bytes. Directories report zero, symbolic links
	// report the size of the link itself.
	Size int64 `json:"size"`
	// IsDir indicates whether the node is a directory.
	IsDir bool `json:"is_dir"`
}

// DotFilter selects which entry names are never reported.
type DotFilter int

const (
	// DotFilterExact skips only the "." and ".." references.
	DotFilterExact DotFilter = iota
	// DotFilterSuffix skips every name ending in ".", which also drops
	// names such as "foo.". Skipped directories are not descended.
	DotFilterSuffix
)

// ParseDotFilter parses "exact" or "suffix".
func ParseDotFilter(s string) (DotFilter, error) {
	switch strings.ToLower(s) {
	case "", "exact":
		return DotFilterExact, nil
	case "suffix":
		return DotFilterSuffix, nil
	default:
		return DotFilterExact, fmt.Errorf("invalid dot filter %q: must be one of [exact suffix]", s)
	}
}

func (f DotFilter) String() string {
	if f == DotFilterSuffix {
		return "suffix"
	}

	return "exact"
}

func (f DotFilter) skip(name string) bool {
	if f == DotFilterSuffix {
		return strings.HasSuffix(name, ".")
	}

	return name == "." || name == ".."
}

// Options configures a walk. The zero value walks everything below the root.
type Options struct {
	// FS is the filesystem to read. Defaults to OS. WalkParallel only uses
	// it to validate the root.
	FS FileSystem
	// Logger receives debug output about skipped paths. Defaults to a
	// logger that discards everything.
	Logger logrus.FieldLogger
	// DotFilter selects which names are never reported.
	DotFilter DotFilter
	// MaxDepth limits traversal depth; top-level children are at depth 1.
	// Zero means unlimited.
	MaxDepth int
	// Excludes are matched against slash separated relative paths.
	// Excluded directories are not descended.
	Excludes []*regexp.Regexp
	// MinSize drops non-directory entries smaller than this many bytes.
	MinSize int64
	// Workers is the number of fastwalk workers used by WalkParallel.
	// Zero lets fastwalk decide.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = OS{}
	}

	if o.Logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		o.Logger = discard
	}

	return o
}

// CompileExcludes compiles exclusion patterns.
func CompileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	excludes := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludes = append(excludes, re)
	}

	return excludes, nil
}

// calculateDepth returns the depth of a slash separated relative path.
func calculateDepth(rel string) int {
	if rel == "" || rel == "." {
		return 0
	}

	return strings.Count(rel, "/") + 1
}

// shouldExcludeByPattern returns the first pattern matching rel, if any.
func shouldExcludeByPattern(rel string, patterns []*regexp.Regexp) *regexp.Regexp {
	for _, re := range patterns {
		if re.MatchString(rel) {
			return re
		}
	}

	return nil
}

// joinRel joins a child name onto a slash separated relative directory.
func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}

	return dir + "/" + name
}

// cleanRoot normalizes the walk root and validates that it is a directory.
func cleanRoot(fsys FileSystem, root string) (string, error) {
	if root == "" {
		root = "."
	}

	root = filepath.Clean(root)

	info, err := fsys.Stat(root)
	if err != nil {
		return "", rootError(root, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("path %q: %w", root, ErrNotDirectory)
	}

	return root, nil
}
