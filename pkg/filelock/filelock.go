package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const retryDelay = 50 * time.Millisecond

// Lock is a cross-process advisory lock backed by a lock file.
type Lock struct {
	lock *flock.Flock
	path string
}

// New returns a lock for the given lock file path. The parent directory is created on demand.
func New(path string) (*Lock, error) {
	if path == "" {
		return nil, errors.New("lock path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve lock path: %w", err)
	}
	return &Lock{lock: flock.New(abs), path: abs}, nil
}

// Path returns the absolute lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Lock acquires the exclusive lock, waiting until it is free or ctx is done.
func (l *Lock) Lock(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("prepare lock directory: %w", err)
	}
	locked, err := l.lock.TryLockContext(ctx, retryDelay)
	if err != nil {
		return fmt.Errorf("acquire lock on %s: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("acquire lock on %s: not acquired", l.path)
	}
	return nil
}

// TryLock attempts to acquire the lock without waiting.
func (l *Lock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("prepare lock directory: %w", err)
	}
	locked, err := l.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire lock on %s: %w", l.path, err)
	}
	return locked, nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("release lock on %s: %w", l.path, err)
	}
	return nil
}
