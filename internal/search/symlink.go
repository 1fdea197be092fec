package search

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

var (
	errBrokenSymlink     = errors.New("broken symlink")
	errSymlinkLoop       = errors.New("symlink loop")
	errSymlinkPermission = errors.New("symlink target not accessible")
)

// resolveSymlink is swapped out in tests.
var resolveSymlink = evalSymlink

// evalSymlink returns the final target of the link at path. Failures are
// classified as errBrokenSymlink, errSymlinkLoop or errSymlinkPermission;
// anything else wraps ErrInvariant.
func evalSymlink(path string) (string, error) {
	target, err := filepath.EvalSymlinks(path)
	if err == nil {
		return target, nil
	}

	// EvalSymlinks does not expose errno for loops, stat does.
	_, statErr := os.Stat(path)
	switch {
	case errors.Is(statErr, fs.ErrNotExist), errors.Is(statErr, unix.ENOTDIR):
		return "", errBrokenSymlink
	case errors.Is(statErr, unix.ELOOP):
		return "", errSymlinkLoop
	case errors.Is(statErr, fs.ErrPermission):
		return "", errSymlinkPermission
	default:
		return "", fmt.Errorf("%w: resolving symlink %s: %w", ErrInvariant, path, err)
	}
}

// resolveStartingPath applies the symlink policy to the path given on the
// command line.
func resolveStartingPath(path string, policy SymlinkPolicy) string {
	if policy == SymlinkNever {
		return path
	}
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return path
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Listing the unresolved path reports the failure as a result line.
		return path
	}
	return target
}
