// Package segment provides the append-only writer and random-access reader
// for individual segment files. A Writer is bound to exactly one active
// segment; a Reader is a read-only handle opened against any segment,
// including the active one, for point reads by byte offset.
package segment

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/pkg/checksum"
	"github.com/iamNilotpal/ignite/pkg/errors"
)

// Writer appends records to one segment file, flushing after every write so
// a Reader opened immediately afterward observes the new bytes. It does
// not call fsync; durability beyond a buffered flush is out of scope.
type Writer struct {
	mu   sync.Mutex
	id   uint32
	path string
	f    *os.File
	buf  *bufio.Writer
	size uint64
}

// OpenWriter opens (creating if necessary) segment id at path for
// appending, positioned at the file's current end.
func OpenWriter(id uint32, path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, path)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat segment file").
			WithPath(path).WithSegmentID(int(id))
	}

	return &Writer{id: id, path: path, f: f, buf: bufio.NewWriter(f), size: uint64(info.Size())}, nil
}

// Append writes p as one atomic append, flushing before returning the
// offset of the first byte past the write. It returns (start, end).
func (w *Writer) Append(p []byte) (start, end uint64, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start = w.size
	n, err := w.buf.Write(p)
	w.size += uint64(n)
	if err != nil {
		return start, w.size, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append to segment").
			WithPath(w.path).WithSegmentID(int(w.id)).WithOffset(int(start))
	}

	if err := w.buf.Flush(); err != nil {
		return start, w.size, errors.ClassifySyncError(err, w.path, w.path, int(w.size))
	}

	return start, w.size, nil
}

// AppendRecord encodes rec and appends it, returning its (start, end)
// byte range within the segment.
func (w *Writer) AppendRecord(rec record.Record) (start, end uint64, err error) {
	var buf bytes.Buffer
	if err := record.Encode(&buf, rec); err != nil {
		return 0, 0, errors.NewStorageError(err, errors.ErrorCodeCodec, "failed to encode record").
			WithPath(w.path).WithSegmentID(int(w.id))
	}
	return w.Append(buf.Bytes())
}

// Size returns the current length of the segment in bytes.
func (w *Writer) Size() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// ID returns the segment id this writer is bound to.
func (w *Writer) ID() uint32 { return w.id }

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.buf.Flush(); err != nil {
		return errors.ClassifySyncError(err, w.path, w.path, int(w.size))
	}
	return w.f.Close()
}

// Reader is a read-only handle on one segment file, used for point reads
// during Get and for full-segment replay during recovery and compaction.
type Reader struct {
	id   uint32
	path string
	f    *os.File
}

// OpenReader opens segment id under dataDir for reading.
func OpenReader(id uint32, path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, path)
	}
	return &Reader{id: id, path: path, f: f}, nil
}

// ID returns the segment id this reader is bound to.
func (r *Reader) ID() uint32 { return r.id }

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// ReadRange decodes exactly one record from the byte range [start, end) and
// fails with a CorruptLog-flavored StorageError if decoding does not
// consume the whole range.
func (r *Reader) ReadRange(start, end uint64) (record.Record, error) {
	section := io.NewSectionReader(r.f, int64(start), int64(end-start))
	dec := record.NewDecoder(section, int64(start))

	rec, consumedEnd, err := dec.Next()
	if err != nil {
		return record.Record{}, errors.NewStorageError(
			err, errors.ErrorCodeSegmentCorrupted, "failed to decode record at recorded offset",
		).WithPath(r.path).WithSegmentID(int(r.id)).WithOffset(int(start))
	}

	if uint64(consumedEnd) != end {
		return record.Record{}, errors.NewStorageError(
			nil, errors.ErrorCodeSegmentCorrupted, "record did not end at its indexed offset",
		).WithPath(r.path).WithSegmentID(int(r.id)).WithOffset(int(start)).
			WithDetail("expectedEnd", end).WithDetail("actualEnd", consumedEnd)
	}

	return rec, nil
}

// CopyRange copies the raw bytes in [start, end) to sink without decoding
// them, used by compaction to relocate live entries without paying for a
// decode/re-encode round trip.
func (r *Reader) CopyRange(start, end uint64, sink io.Writer) (int64, error) {
	section := io.NewSectionReader(r.f, int64(start), int64(end-start))
	n, err := io.Copy(sink, section)
	if err != nil {
		return n, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to copy segment byte range").
			WithPath(r.path).WithSegmentID(int(r.id)).WithOffset(int(start))
	}
	return n, nil
}

// ReplayEntry is one decoded record encountered during a full-segment
// replay, alongside its byte range.
type ReplayEntry struct {
	Record     record.Record
	Start, End uint64
}

// Replay decodes every record in the segment from the beginning, in order.
// A torn trailing write (a record that fails to decode because the file
// ends mid-value) is not an error: Replay stops there and returns what it
// has decoded so far, leaving recovery of a clean log unaffected.
func Replay(path string) ([]ReplayEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, path)
	}
	defer f.Close()

	dec := record.NewDecoder(f, 0)
	var entries []ReplayEntry
	var offset uint64

	for {
		rec, end, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A torn trailing write looks identical to real corruption at
			// the decoder layer; treat any decode failure during replay as
			// the end of usable data rather than propagating it, since a
			// crash mid-append is an expected, not exceptional, condition.
			break
		}
		entries = append(entries, ReplayEntry{Record: rec, Start: offset, End: uint64(end)})
		offset = uint64(end)
	}

	return entries, nil
}

// Checksum streams the whole segment file at path through a CRC32 (IEEE)
// hash. It is not consulted on the hot read/write path; it exists for an
// operator-triggered verification pass that fingerprints a segment so a
// later run (after a backup or a copy) can be compared against it.
func Checksum(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.ClassifyFileOpenError(err, path, path)
	}
	defer f.Close()

	h := checksum.NewCRC32IEEE()
	if _, err := io.Copy(h, f); err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to checksum segment").
			WithPath(path)
	}
	return h.Sum32(), nil
}
