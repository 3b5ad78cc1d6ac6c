// Package fsafe guards all page writes: target directories are probed for
// writability and every output path is resolved against the configured root
// before anything touches disk.
package fsafe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnwritable is returned when the target directory cannot be written.
	ErrUnwritable = errors.New("directory is not writable")
	// ErrOutsideRoot is returned when a resolved path escapes the output root.
	ErrOutsideRoot = errors.New("path escapes the output root")
)

const probeName = ".write_test.tmp"

// EnsureWritableDir creates dir (and parents) and probes writability by
// creating and deleting a marker file.
func EnsureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: cannot create %s: %v", ErrUnwritable, dir, err)
	}

	probe := filepath.Join(dir, probeName)
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("%w: cannot write to %s, fix permissions: %v", ErrUnwritable, dir, err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("%w: cannot remove probe file in %s: %v", ErrUnwritable, dir, err)
	}
	return nil
}

// ResolveWithin joins parts under root, resolves the result to an absolute
// path, and fails closed unless it is a descendant of root. This blocks
// traversal through crafted category or slug values.
func ResolveWithin(root string, parts ...string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("cannot resolve output root %s: %w", root, err)
	}

	target, err := filepath.Abs(filepath.Join(append([]string{absRoot}, parts...)...))
	if err != nil {
		return "", fmt.Errorf("cannot resolve target path: %w", err)
	}

	rel, err := filepath.Rel(absRoot, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == "." {
		return "", fmt.Errorf("%w: %s is not under %s", ErrOutsideRoot, target, absRoot)
	}
	return target, nil
}

// WriteFile writes data to path as a plain overwrite. Path checks are the
// caller's job, via ResolveWithin and EnsureWritableDir.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
