// internal/safe/safe.go
package safe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dolthub/fslock"
)

var ErrLocked = errors.New("lock is held")

// WriteFile writes data to path atomically: tempfile, fsync, rename. The
// tempfile lives next to path so the rename stays on one filesystem. A crash
// leaves either the old or the new content.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return WriteFrom(path, bytes.NewReader(data), perm)
}

// WriteFrom is WriteFile for streamed content. Nothing appears at path unless
// r is read to the end without error.
func WriteFrom(path string, r io.Reader, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = io.Copy(f, r); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = f.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Lock is an exclusive, process-wide lock backed by a lock file.
type Lock struct {
	path string
	lck  *fslock.Lock
}

// Acquire takes the lock at path without waiting. It returns ErrLocked when
// another process holds it.
func Acquire(path string) (*Lock, error) {
	lck := fslock.New(path)
	if err := lck.TryLock(); err != nil {
		if errors.Is(err, fslock.ErrLocked) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	return &Lock{path: path, lck: lck}, nil
}

func (l *Lock) Path() string {
	return l.path
}

func (l *Lock) Release() error {
	if l == nil || l.lck == nil {
		return nil
	}
	err := l.lck.Unlock()
	l.lck = nil
	return err
}
