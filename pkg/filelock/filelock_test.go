package filelock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockExcludesSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "notes.json.lock")
	first, err := New(path)
	require.NoError(t, err)
	second, err := New(path)
	require.NoError(t, err)

	require.NoError(t, first.Lock(context.Background()))

	locked, err := second.TryLock()
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, first.Unlock())

	locked, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, locked)
	require.NoError(t, second.Unlock())
}

func TestLockHonoursContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.lock")
	holder, err := New(path)
	require.NoError(t, err)
	waiter, err := New(path)
	require.NoError(t, err)

	require.NoError(t, holder.Lock(context.Background()))
	defer func() { _ = holder.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err = waiter.Lock(ctx)
	require.Error(t, err)
}

func TestPathIsAbsolute(t *testing.T) {
	lock, err := New("notes.lock")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(lock.Path()))
	assert.Equal(t, "notes.lock", filepath.Base(lock.Path()))
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
