package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Staged is a fully written and synced temporary file waiting to replace its target.
// Readers of the target never observe partial content: the swap is a single rename.
type Staged struct {
	target string
	temp   string
	done   bool
}

// Stage writes data to a temporary sibling of target. The target itself is untouched
// until Commit is called.
func Stage(target string, data []byte, perm os.FileMode) (staged *Staged, err error) {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file for %s: %w", target, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if cerr := tmp.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close temp file for %s: %w", target, cerr)
		}
		if err != nil {
			_ = os.Remove(tmpPath)
			staged = nil
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return nil, fmt.Errorf("write temp file for %s: %w", target, err)
	}
	if err = tmp.Sync(); err != nil {
		return nil, fmt.Errorf("sync temp file for %s: %w", target, err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return nil, fmt.Errorf("chmod temp file for %s: %w", target, err)
	}
	return &Staged{target: target, temp: tmpPath}, nil
}

// Target returns the path the staged file will replace.
func (s *Staged) Target() string {
	return s.target
}

// Commit atomically renames the staged file over its target.
func (s *Staged) Commit() error {
	if s == nil || s.done {
		return nil
	}
	if err := os.Rename(s.temp, s.target); err != nil {
		return fmt.Errorf("replace %s: %w", s.target, err)
	}
	s.done = true
	syncDir(filepath.Dir(s.target))
	return nil
}

// Discard removes the staged file if it was not committed.
func (s *Staged) Discard() {
	if s == nil || s.done {
		return
	}
	_ = os.Remove(s.temp)
	s.done = true
}

// WriteFileAtomic replaces target with data using write-to-temp-then-rename.
func WriteFileAtomic(target string, data []byte, perm os.FileMode) error {
	staged, err := Stage(target, data, perm)
	if err != nil {
		return err
	}
	if err := staged.Commit(); err != nil {
		staged.Discard()
		return err
	}
	return nil
}

// syncDir flushes the directory entry so the rename survives a crash. Best effort:
// some platforms do not support fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
