package renamer

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

// Error kinds returned by the renamer. Every error coming out of this package
// wraps exactly one of them, together with the underlying filesystem error.
var (
	ErrPathNotFound     = errors.New("path not found")
	ErrNotADirectory    = errors.New("not a directory")
	ErrPermissionDenied = errors.New("permission denied")
	ErrRenameConflict   = errors.New("rename conflict")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// classify wraps a filesystem error with the matching kind.
func classify(op, path string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s %s: %w", ErrPathNotFound, op, path, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s %s: %w", ErrPermissionDenied, op, path, err)
	case errors.Is(err, syscall.ENOTDIR):
		// a path component is a regular file
		return fmt.Errorf("%w: %s %s: %w", ErrNotADirectory, op, path, err)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%w: %s %s: %w", ErrRenameConflict, op, path, err)
	default:
		return fmt.Errorf("failed to %s %s: %w", op, path, err)
	}
}

// Conflict is a plan step whose target would clobber an existing entry.
type Conflict struct {
	Step   Step
	Reason string
}

// ConflictError is returned by the preflight check before anything is renamed.
type ConflictError struct {
	Folder    string
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s -> %s (%s)", c.Step.From, c.Step.To, c.Reason))
	}
	return fmt.Sprintf("%s in %s: %s", ErrRenameConflict, e.Folder, strings.Join(parts, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrRenameConflict
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrPathNotFound), errors.Is(err, ErrNotADirectory), errors.Is(err, ErrInvalidArgument):
		return 2
	case errors.Is(err, ErrPermissionDenied):
		return 3
	case errors.Is(err, ErrRenameConflict):
		return 4
	default:
		return 1
	}
}
