// Package lock provides advisory file locking for commands that mutate a menu store.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// FileName is the lock file created inside the store directory.
const FileName = "wsm.lock"

// ErrAlreadyLocked is returned when another wsm process holds the lock.
var ErrAlreadyLocked = errors.New("another wsm command is already running")

// Flocker abstracts the subset of flock.Flock used for advisory locking.
type Flocker interface {
	TryLock() (bool, error)
	Unlock() error
}

// Lock wraps a Flocker to provide fail-fast advisory locking. A Lock also
// excludes concurrent holders within the same process, which the file lock
// alone does not.
type Lock struct {
	flocker Flocker
	dir     string

	mu   sync.Mutex
	held bool
}

// New creates a Lock from the given Flocker.
func New(f Flocker) *Lock {
	return &Lock{flocker: f}
}

// NewFromPath creates a Lock backed by a file at the given path. The parent
// directory is created on first TryLock.
func NewFromPath(path string) *Lock {
	return &Lock{flocker: flock.New(path), dir: filepath.Dir(path)}
}

// InDir creates a Lock backed by FileName inside dir.
func InDir(dir string) *Lock {
	return NewFromPath(filepath.Join(dir, FileName))
}

// TryLock attempts a non-blocking lock acquisition. It returns
// ErrAlreadyLocked if the lock is held by another process, or wraps
// any underlying error from the Flocker.
func (l *Lock) TryLock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return ErrAlreadyLocked
	}
	if l.dir != "" {
		if err := os.MkdirAll(l.dir, 0o755); err != nil {
			return fmt.Errorf("creating lock directory: %w", err)
		}
	}

	ok, err := l.flocker.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	if !ok {
		return ErrAlreadyLocked
	}
	l.held = true
	return nil
}

// Unlock releases the advisory lock.
func (l *Lock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.flocker.Unlock(); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	l.held = false
	return nil
}
