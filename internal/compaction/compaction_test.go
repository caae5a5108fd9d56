package compaction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldCompact(t *testing.T) {
	require.False(t, ShouldCompact(0, 1024))
	require.False(t, ShouldCompact(1023, 1024))
	require.True(t, ShouldCompact(1024, 1024))
	require.True(t, ShouldCompact(2048, 1024))
	require.False(t, ShouldCompact(1<<20, 0))
}

func TestNextIDs(t *testing.T) {
	plan := NextIDs(5)
	require.Equal(t, Plan{Compacted: 6, Next: 7}, plan)
}
