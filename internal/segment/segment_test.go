package segment

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ignite/internal/record"
)

func TestWriterAppendAndReaderReadRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.log")

	w, err := OpenWriter(1, path)
	require.NoError(t, err)

	start1, end1, err := w.AppendRecord(record.Set("a", []byte("1")))
	require.NoError(t, err)
	require.Zero(t, start1)

	start2, end2, err := w.AppendRecord(record.Set("b", []byte("2")))
	require.NoError(t, err)
	require.Equal(t, end1, start2)
	require.Equal(t, end2, w.Size())

	require.NoError(t, w.Close())

	r, err := OpenReader(1, path)
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.ReadRange(start1, end1)
	require.NoError(t, err)
	require.Equal(t, record.Set("a", []byte("1")), rec)

	rec, err = r.ReadRange(start2, end2)
	require.NoError(t, err)
	require.Equal(t, record.Set("b", []byte("2")), rec)
}

func TestReaderReadRangeRejectsMismatchedEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.log")

	w, err := OpenWriter(1, path)
	require.NoError(t, err)
	start, end, err := w.AppendRecord(record.Set("a", []byte("1")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenReader(1, path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReadRange(start, end+1)
	require.Error(t, err)
}

func TestCopyRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.log")

	w, err := OpenWriter(1, path)
	require.NoError(t, err)
	start, end, err := w.AppendRecord(record.Set("a", []byte("1")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenReader(1, path)
	require.NoError(t, err)
	defer r.Close()

	var buf bytes.Buffer
	n, err := r.CopyRange(start, end, &buf)
	require.NoError(t, err)
	require.Equal(t, int64(end-start), n)
}

func TestReplayStopsAtTornTrailingWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.log")

	w, err := OpenWriter(1, path)
	require.NoError(t, err)
	_, end, err := w.AppendRecord(record.Set("a", []byte("1")))
	require.NoError(t, err)
	_, _, err = w.AppendRecord(record.Set("b", []byte("2")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Truncate the file mid-way through the second record to simulate a
	// crash during an append.
	truncateTo(t, path, end+3)

	entries, err := Replay(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, record.Set("a", []byte("1")), entries[0].Record)
}

func TestChecksumIsStableAndDetectsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.log")

	w, err := OpenWriter(1, path)
	require.NoError(t, err)
	_, _, err = w.AppendRecord(record.Set("a", []byte("1")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	first, err := Checksum(path)
	require.NoError(t, err)

	second, err := Checksum(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	w2, err := OpenWriter(1, path)
	require.NoError(t, err)
	_, _, err = w2.AppendRecord(record.Set("b", []byte("2")))
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	third, err := Checksum(path)
	require.NoError(t, err)
	require.NotEqual(t, first, third)
}

func truncateTo(t *testing.T, path string, size uint64) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.Truncate(int64(size)))
}
