package treewalk

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound reports a walk root that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermission reports a walk root that cannot be read.
	ErrPermission = errors.New("permission denied")
	// ErrNotDirectory reports a walk root that is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// ChildError records a child that could not be visited. The walk skips the
// child and carries on.
type ChildError struct {
	// Path is the slash separated path relative to the walk root.
	Path string
	// Op is the failed operation ("lstat" or "readdir").
	Op string
	// Err is the underlying error.
	Err error
}

func (e *ChildError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ChildError) Unwrap() error {
	return e.Err
}

// rootError classifies a failure on the walk root.
func rootError(root string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("accessing path %q: %w: %w", root, ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("accessing path %q: %w: %w", root, ErrPermission, err)
	default:
		return fmt.Errorf("accessing path %q: %w", root, err)
	}
}
