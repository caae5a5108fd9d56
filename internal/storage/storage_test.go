package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/iamNilotpal/ignite/pkg/seginfo"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	return &Config{Options: &opts, Logger: zap.NewNop().Sugar()}
}

func TestNewOnEmptyDirectoryOpensSegmentOne(t *testing.T) {
	cfg := newTestConfig(t)
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, uint32(1), s.ActiveID())
}

func TestNewAlwaysOpensAFreshActiveSegment(t *testing.T) {
	cfg := newTestConfig(t)

	first, err := New(context.Background(), cfg)
	require.NoError(t, err)
	_, _, _, err = first.Append(record.Set("a", []byte("1")))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer second.Close()

	// The highest existing segment (1) must be left read-only; the new
	// active segment is always one past it, never a reuse.
	require.Equal(t, uint32(2), second.ActiveID())

	ids, err := second.DiscoverAll()
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2}, ids)
}

func TestAppendAndOpenReader(t *testing.T) {
	cfg := newTestConfig(t)
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	segID, start, end, err := s.Append(record.Set("a", []byte("1")))
	require.NoError(t, err)
	require.Equal(t, s.ActiveID(), segID)

	r, err := s.OpenReader(segID)
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.ReadRange(start, end)
	require.NoError(t, err)
	require.Equal(t, record.Set("a", []byte("1")), rec)
}

func TestRotate(t *testing.T) {
	cfg := newTestConfig(t)
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Rotate(5))
	require.Equal(t, uint32(5), s.ActiveID())

	r, err := s.OpenReader(5)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	require.FileExists(t, seginfo.Path(s.DataDir(), 5))
}
