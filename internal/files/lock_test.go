package files

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedLocksDoNotBlockEachOther(t *testing.T) {
	lock := NewRWLock(filepath.Join(t.TempDir(), "status.lock"))

	unlock1, err := lock.RLock()
	require.NoError(t, err)
	defer unlock1()

	done := make(chan struct{})
	go func() {
		unlock2, err := lock.RLock()
		if err == nil {
			unlock2()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second shared lock blocked")
	}
}

func TestExclusiveLockBlocksReaders(t *testing.T) {
	lock := NewRWLock(filepath.Join(t.TempDir(), "nested", "status.lock"))

	unlockWriter, err := lock.Lock()
	require.NoError(t, err)

	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		unlock, err := lock.RLock()
		if err == nil {
			acquired.Store(true)
			unlock()
		}
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, acquired.Load(), "reader acquired the lock while writer held it")

	unlockWriter()

	select {
	case <-done:
		assert.True(t, acquired.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("reader never acquired the lock")
	}
}

func TestReadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status")
	require.NoError(t, os.WriteFile(path, []byte("online 12345"), 0644))

	content, err := ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, "online 12345", content)

	_, err = ReadText(filepath.Join(dir, "missing"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
