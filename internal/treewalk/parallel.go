package treewalk

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"
)

// WalkParallel walks root with a pool of fastwalk workers and calls fn for
// every entry. fn is called from several goroutines at once and must be safe
// for concurrent use. Entries arrive in no particular order.
//
// Root failures are reported exactly as by Open. Skipped children are
// returned once the walk completes.
func WalkParallel(ctx context.Context, root string, opts Options, fn func(Entry)) ([]*ChildError, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	root, err := cleanRoot(opts.FS, root)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		errs []*ChildError
	)

	skip := func(rel, op string, err error) {
		log.WithFields(logrus.Fields{"path": rel, "error": err}).Debugf("skipping child (%s)", op)

		mu.Lock()
		defer mu.Unlock()

		errs = append(errs, &ChildError{Path: rel, Op: op, Err: err})
	}

	conf := &fastwalk.Config{
		Follow:     false, // Links are leaves
		NumWorkers: opts.Workers,
	}

	log.WithField("path", root).Debug("walking in parallel")

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		rel = filepath.ToSlash(rel)

		if err != nil {
			if rel == "." {
				return rootError(root, err)
			}

			skip(rel, "readdir", err)

			return nil
		}

		// Check cancellation periodically
		if err := ctx.Err(); err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		if opts.DotFilter.skip(d.Name()) {
			return skipDir(d)
		}

		depth := calculateDepth(rel)
		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			return skipDir(d)
		}

		if re := shouldExcludeByPattern(rel, opts.Excludes); re != nil {
			log.WithFields(logrus.Fields{"path": rel, "pattern": re.String()}).Debug("excluding path")

			return skipDir(d)
		}

		if d.IsDir() {
			fn(Entry{Path: rel, IsDir: true})

			if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
				return filepath.SkipDir
			}

			return nil
		}

		info, err := d.Info()
		if err != nil {
			skip(rel, "lstat", err)

			return nil
		}

		if info.Size() < opts.MinSize {
			return nil
		}

		fn(Entry{Path: rel, Size: info.Size()})

		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, filepath.SkipDir) {
		return errs, walkErr
	}

	return errs, nil
}

func skipDir(d fs.DirEntry) error {
	if d.IsDir() {
		return filepath.SkipDir
	}

	return nil
}
