package gitref

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Scratch manages per-repository working directories for bare mirror clones.
// A directory is always emptied before use and removed afterwards, even when a
// clone left read-only files behind.
type Scratch struct {
	Root string
}

// NewScratch returns a Scratch rooted at root (relative paths resolve against
// the working directory).
func NewScratch(root string) *Scratch {
	if root == "" {
		root = "tmp"
	}
	return &Scratch{Root: root}
}

// Prepare returns an empty directory <root>/<name>, removing leftovers from an
// earlier run.
func (s *Scratch) Prepare(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid scratch directory name %q", name)
	}
	if err := os.MkdirAll(s.Root, 0o750); err != nil {
		return "", fmt.Errorf("failed to create scratch root: %w", err)
	}
	dir := filepath.Join(s.Root, name)
	if err := s.Cleanup(dir); err != nil {
		return "", err
	}
	if err := os.Mkdir(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return dir, nil
}

// Cleanup makes everything under dir owner-writable and removes it. A missing
// dir is not an error.
func (s *Scratch) Cleanup(dir string) error {
	if _, err := os.Lstat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := makeWritable(dir); err != nil {
		return fmt.Errorf("failed to reset permissions under %s: %w", dir, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}

func makeWritable(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		mode := info.Mode().Perm() | 0o200
		if d.IsDir() {
			// directories also need r+x so WalkDir can descend
			mode |= 0o500
		}
		if mode == info.Mode().Perm() {
			return nil
		}
		return os.Chmod(path, mode)
	})
}
