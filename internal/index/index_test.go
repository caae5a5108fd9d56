package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(context.Background(), &Config{DataDir: t.TempDir(), Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return idx
}

func TestSetGetDelete(t *testing.T) {
	idx := newTestIndex(t)

	_, ok := idx.Get("a")
	require.False(t, ok)

	prev, existed := idx.Set("a", Offset{SegmentID: 1, Start: 0, End: 10})
	require.False(t, existed)
	require.Zero(t, prev)

	off, ok := idx.Get("a")
	require.True(t, ok)
	require.Equal(t, Offset{SegmentID: 1, Start: 0, End: 10}, off)

	prev, existed = idx.Set("a", Offset{SegmentID: 2, Start: 0, End: 5})
	require.True(t, existed)
	require.Equal(t, uint64(10), prev.Size())

	prev, existed = idx.Delete("a")
	require.True(t, existed)
	require.Equal(t, uint64(5), prev.Size())

	_, ok = idx.Get("a")
	require.False(t, ok)
}

func TestRangeAndReplace(t *testing.T) {
	idx := newTestIndex(t)
	idx.Set("a", Offset{SegmentID: 1, Start: 0, End: 1})
	idx.Set("b", Offset{SegmentID: 1, Start: 1, End: 2})

	seen := map[string]Offset{}
	idx.Range(func(key string, off Offset) bool {
		seen[key] = off
		return true
	})
	require.Len(t, seen, 2)

	idx.Replace(map[string]Offset{"c": {SegmentID: 2, Start: 0, End: 1}})
	require.Equal(t, 1, idx.Len())
	_, ok := idx.Get("a")
	require.False(t, ok)
	_, ok = idx.Get("c")
	require.True(t, ok)
}

func TestCloseRejectsFurtherUse(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Close())
	require.ErrorIs(t, idx.Close(), ErrIndexClosed)
}
