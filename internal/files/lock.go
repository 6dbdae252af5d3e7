package files

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// RWLock is a process-wide reader/writer lock backed by flock(2) on a lock
// file. Each acquisition opens its own descriptor, so it excludes other
// goroutines of this process as well as other processes using the same file.
type RWLock struct {
	path string
}

func NewRWLock(path string) *RWLock {
	return &RWLock{path: path}
}

// RLock acquires the lock in shared mode and returns the release function.
func (l *RWLock) RLock() (func(), error) {
	return l.acquire(unix.LOCK_SH)
}

// Lock acquires the lock in exclusive mode and returns the release function.
func (l *RWLock) Lock() (func(), error) {
	return l.acquire(unix.LOCK_EX)
}

func (l *RWLock) acquire(how int) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", l.path, err)
	}

	for {
		err = unix.Flock(int(f.Fd()), how)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", l.path, err)
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
