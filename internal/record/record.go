// Package record defines the on-disk log entry shapes and their
// self-delimiting JSON codec.
//
// Records are written back to back with no length prefix and no separator
// byte between them. This works because a JSON value is self-terminating:
// a streaming decoder knows exactly where one value ends without needing
// an explicit framing header. This is the same idiom the system this
// engine is modeled on uses for its own log (a serde_json streaming
// deserializer reading one Entry value after another), translated to Go's
// encoding/json.Decoder and its InputOffset method.
package record

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/iamNilotpal/ignite/pkg/errors"
)

// Kind distinguishes the two record shapes a segment can hold.
type Kind string

const (
	KindSet    Kind = "set"
	KindRemove Kind = "rm"
)

// Record is one decoded log entry. Value is nil for KindRemove.
type Record struct {
	Kind  Kind   `json:"kind"`
	Key   string `json:"key"`
	Value []byte `json:"value,omitempty"`
}

// Set builds a KindSet record.
func Set(key string, value []byte) Record {
	return Record{Kind: KindSet, Key: key, Value: value}
}

// Remove builds a KindRemove record.
func Remove(key string) Record {
	return Record{Kind: KindRemove, Key: key}
}

// Encode writes rec as a single JSON value with no trailing delimiter and
// no separator bytes before the next record. json.Marshal (rather than
// json.Encoder.Encode, which appends a trailing newline) is used
// deliberately so back-to-back records are truly contiguous on disk.
func Encode(w io.Writer, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Decoder decodes a back-to-back stream of records from a segment file,
// tracking the absolute byte offset consumed so far so callers can record
// exact (start, end) ranges for the index.
type Decoder struct {
	dec    *json.Decoder
	base   int64
	offset int64
}

// NewDecoder wraps r, starting offset accounting at base (the byte
// position in the segment file that r's first byte corresponds to).
func NewDecoder(r io.Reader, base int64) *Decoder {
	return &Decoder{dec: json.NewDecoder(bufio.NewReader(r)), base: base, offset: base}
}

// Next decodes the next record and returns it along with the absolute
// offset of the first byte past it in the segment file.
//
// io.EOF is returned, unwrapped, when the stream ends exactly on a record
// boundary. A JSON syntax error or io.ErrUnexpectedEOF encountered mid
// record is reported as a CorruptLog StorageError; callers replaying a
// segment for recovery treat that distinctly from a clean EOF, since it
// signals a torn trailing write rather than a healthy end of file.
func (d *Decoder) Next() (Record, int64, error) {
	var rec Record
	if err := d.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return Record{}, d.offset, io.EOF
		}
		return Record{}, d.offset, errors.NewStorageError(
			err, errors.ErrorCodeSegmentCorrupted, "malformed record in segment",
		).WithOffset(int(d.offset))
	}

	d.offset = d.base + d.dec.InputOffset()
	return rec, d.offset, nil
}
