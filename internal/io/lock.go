package ioutils

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside the output directory while a batch runs.
const LockFileName = ".musare-dl.lock"

// ErrLocked is returned when another run already holds the output directory.
var ErrLocked = errors.New("output directory is in use by another musare-dl run")

// LockDir takes an exclusive, non-blocking lock on dir. The returned function
// removes the lock file and releases the lock.
func LockDir(dir string) (func() error, error) {
	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	unlock := func() error {
		// The file is removed while the lock is still held.
		rmErr := RemoveIfExists(path)
		return errors.Join(rmErr, lock.Unlock())
	}
	return unlock, nil
}
