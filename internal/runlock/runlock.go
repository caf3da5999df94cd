// Package runlock guarantees that montage runs never process overlapping
// directory trees at the same time.
//
// A run holds an exclusive lock for its root and a shared lock for every
// ancestor of it. Runs on sibling trees only share ancestor locks and proceed
// together; a run on /x and one on /x/y collide on the lock for /x.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"landscaper/internal/services"
)

// Lock is a held run lock.
type Lock struct {
	path  string
	locks []*flock.Flock
}

// PathFor returns the lock file used for root under stateDir.
func PathFor(stateDir, root string) string {
	sum := sha256.Sum256([]byte(canonical(root)))
	return filepath.Join(stateDir, "locks", hex.EncodeToString(sum[:])[:16]+".lock")
}

func canonical(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return filepath.Clean(root)
}

// ancestors lists the parents of path from the closest to the filesystem root.
func ancestors(path string) []string {
	var out []string
	for {
		parent := filepath.Dir(path)
		if parent == path {
			return out
		}
		out = append(out, parent)
		path = parent
	}
}

// Acquire takes the lock for root without blocking. A concurrent run on root,
// on one of its ancestors or inside it yields an error wrapping
// services.ErrPrecondition.
func Acquire(stateDir, root string) (*Lock, error) {
	root = canonical(root)
	path := PathFor(stateDir, root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}

	held := &Lock{path: path}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, busy(root, root)
	}
	held.locks = append(held.locks, fl)

	for _, dir := range ancestors(root) {
		shared := flock.New(PathFor(stateDir, dir))
		ok, err := shared.TryRLock()
		if err != nil {
			_ = held.Release()
			return nil, fmt.Errorf("acquire lock for %s: %w", dir, err)
		}
		if !ok {
			_ = held.Release()
			return nil, busy(root, dir)
		}
		held.locks = append(held.locks, shared)
	}
	return held, nil
}

func busy(root, holder string) error {
	msg := fmt.Sprintf("another landscaper run is already processing %s or a directory inside it", root)
	if holder != root {
		msg = fmt.Sprintf("another landscaper run is processing %s, which contains %s", holder, root)
	}
	return services.Wrap(services.ErrPrecondition, "runlock", "acquire", msg, nil)
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks. It is safe to call on a nil Lock and more than once.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	var firstErr error
	for _, fl := range l.locks {
		if err := fl.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
