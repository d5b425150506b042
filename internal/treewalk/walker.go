package treewalk

import (
	"context"
	"iter"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// frame is one directory on the traversal stack together with its listing
// cursor.
type frame struct {
	dir   string // slash separated, relative to the root; "" for the root
	depth int
	names []string
	next  int
}

// Walker is a single-pass, pull-based cursor over a directory tree.
//
//	w, err := treewalk.Open(ctx, root, treewalk.Options{})
//	if err != nil {
//		return err
//	}
//	for w.Next() {
//		e := w.Entry()
//		...
//	}
//	return w.Err()
//
// A Walker is not safe for concurrent use.
type Walker struct {
	ctx  context.Context
	root string
	opts Options
	log  logrus.FieldLogger

	stack   []*frame
	pending *frame // directory emitted but not listed yet
	cur     Entry
	err     error
	errs    []*ChildError
	done    bool
}

// Open validates and lists root and returns a Walker positioned before the
// first entry. A missing root fails with ErrNotFound, an unreadable one with
// ErrPermission and a non-directory with ErrNotDirectory.
func Open(ctx context.Context, root string, opts Options) (*Walker, error) {
	opts = opts.withDefaults()

	root, err := cleanRoot(opts.FS, root)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := opts.FS.ReadDirNames(root)
	if err != nil {
		return nil, rootError(root, err)
	}

	opts.Logger.WithField("path", root).Debug("walking")

	return &Walker{
		ctx:   ctx,
		root:  root,
		opts:  opts,
		log:   opts.Logger,
		stack: []*frame{{names: names}},
	}, nil
}

// Walk opens root and returns its entries as a sequence. A root failure or
// cancellation is yielded as the final element with a zero Entry.
func Walk(ctx context.Context, root string, opts Options) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		w, err := Open(ctx, root, opts)
		if err != nil {
			yield(Entry{}, err)

			return
		}

		for e, err := range w.All() {
			if !yield(e, err) {
				return
			}
		}
	}
}

// Root returns the cleaned walk root.
func (w *Walker) Root() string {
	return w.root
}

// Next advances to the next entry. It returns false once the tree is
// exhausted, the walker is closed or the context is cancelled.
func (w *Walker) Next() bool {
	for !w.done {
		if p := w.pending; p != nil {
			w.pending = nil

			// Listing boundary.
			if err := w.ctx.Err(); err != nil {
				w.err = err
				w.finish()

				return false
			}

			names, err := w.opts.FS.ReadDirNames(w.abs(p.dir))
			if err != nil {
				w.skip(p.dir, "readdir", err)

				continue
			}

			p.names = names
			w.stack = append(w.stack, p)

			continue
		}

		if len(w.stack) == 0 {
			w.finish()

			return false
		}

		top := w.stack[len(w.stack)-1]
		if top.next == len(top.names) {
			w.stack[len(w.stack)-1] = nil
			w.stack = w.stack[:len(w.stack)-1]

			continue
		}

		name := top.names[top.next]
		top.next++

		if e, ok := w.visit(top, name); ok {
			w.cur = e

			return true
		}
	}

	return false
}

// Entry returns the entry produced by the last successful call to Next.
func (w *Walker) Entry() Entry {
	return w.cur
}

// Err returns the error that ended the walk early, if any. Skipped children
// are not errors; see Errors.
func (w *Walker) Err() error {
	return w.err
}

// Errors returns the children skipped so far.
func (w *Walker) Errors() []*ChildError {
	return w.errs
}

// Close abandons the walk and releases the traversal state.
func (w *Walker) Close() error {
	w.finish()

	return nil
}

// All adapts the cursor to a range-over-func sequence. Stopping the range
// early closes the walker.
func (w *Walker) All() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for w.Next() {
			if !yield(w.Entry(), nil) {
				w.Close()

				return
			}
		}

		if err := w.Err(); err != nil {
			yield(Entry{}, err)
		}
	}
}

// visit turns one listed name into an entry, reporting false for names that
// are filtered or cannot be stat'd.
func (w *Walker) visit(parent *frame, name string) (Entry, bool) {
	if w.opts.DotFilter.skip(name) {
		return Entry{}, false
	}

	rel := joinRel(parent.dir, name)
	depth := parent.depth + 1

	if re := shouldExcludeByPattern(rel, w.opts.Excludes); re != nil {
		w.log.WithFields(logrus.Fields{"path": rel, "pattern": re.String()}).Debug("excluding path")

		return Entry{}, false
	}

	info, err := w.opts.FS.Lstat(w.abs(rel))
	if err != nil {
		w.skip(rel, "lstat", err)

		return Entry{}, false
	}

	if info.IsDir() {
		if w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
			w.log.WithField("path", rel).Debugf("not descending (depth %d)", w.opts.MaxDepth)
		} else {
			w.pending = &frame{dir: rel, depth: depth}
		}

		return Entry{Path: rel, IsDir: true}, true
	}

	if info.Size() < w.opts.MinSize {
		return Entry{}, false
	}

	return Entry{Path: rel, Size: info.Size()}, true
}

func (w *Walker) skip(rel, op string, err error) {
	w.log.WithFields(logrus.Fields{"path": rel, "error": err}).Debugf("skipping child (%s)", op)
	w.errs = append(w.errs, &ChildError{Path: rel, Op: op, Err: err})
}

func (w *Walker) abs(rel string) string {
	if rel == "" {
		return w.root
	}

	return filepath.Join(w.root, filepath.FromSlash(rel))
}

func (w *Walker) finish() {
	w.done = true
	w.stack = nil
	w.pending = nil
}
