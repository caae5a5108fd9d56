// Package engine implements the public get/set/remove surface of an
// ignite store: the in-memory index, the active segment writer behind a
// single writer lock, and the inline compaction policy that reclaims
// space once the accumulated stale-byte counter crosses a threshold.
package engine

import (
	"bytes"
	"context"
	stdErrors "errors"

	"github.com/iamNilotpal/ignite/internal/compaction"
	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/internal/storage"
	"github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/iamNilotpal/ignite/pkg/seginfo"
	"go.uber.org/multierr"
)

// ErrEngineClosed is returned by any operation on a handle whose Close has
// already run.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// New opens (creating if necessary) a store rooted at config.Options.DataDir.
// Every existing segment is replayed in ascending id order to rebuild the
// index and the uncompacted-byte counter before the engine accepts
// operations; a fresh empty segment becomes the new active one regardless
// of whether the directory was empty.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "engine configuration is required",
		).WithField("config").WithRule("required")
	}

	idx, err := index.New(ctx, &index.Config{DataDir: config.Options.DataDir, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	store, err := storage.New(ctx, &storage.Config{Options: config.Options, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	ids, err := store.DiscoverAll()
	if err != nil {
		return nil, err
	}

	entries := make(map[string]index.Offset, 2048)
	var uncompacted uint64

	for _, id := range ids {
		replayed, err := segment.Replay(seginfo.Path(store.DataDir(), id))
		if err != nil {
			return nil, err
		}

		for _, re := range replayed {
			size := re.End - re.Start
			switch re.Record.Kind {
			case record.KindSet:
				if prev, existed := entries[re.Record.Key]; existed {
					uncompacted += prev.Size()
				}
				entries[re.Record.Key] = index.Offset{SegmentID: id, Start: re.Start, End: re.End}
			case record.KindRemove:
				if prev, existed := entries[re.Record.Key]; existed {
					uncompacted += prev.Size()
					delete(entries, re.Record.Key)
				}
				uncompacted += size
			}
		}
	}

	idx.Replace(entries)

	c := &core{options: config.Options, log: config.Logger, index: idx, storage: store, uncompacted: uncompacted}

	config.Logger.Infow(
		"engine opened",
		"dataDir", store.DataDir(),
		"activeSegment", store.ActiveID(),
		"discoveredSegments", len(ids),
		"keys", idx.Len(),
		"uncompactedBytes", options.FormatBytes(uncompacted),
	)

	return &Engine{core: c, readers: make(map[uint32]*segment.Reader)}, nil
}

// Clone returns a new handle sharing the same index, active writer, and
// writer lock as e, but owning its own segment reader cache. Every worker
// in the dispatcher's pool is handed its own clone of the engine opened by
// New so concurrent readers never contend over one shared reader cache.
func (e *Engine) Clone() *Engine {
	return &Engine{core: e.core, readers: make(map[uint32]*segment.Reader)}
}

// Get consults the index for key and, if present, decodes the value from
// its segment. ok is false both when the key has no entry and when it was
// never set or has since been removed; no error is returned for either
// case.
func (e *Engine) Get(key string) ([]byte, bool, error) {
	if e.core.closed.Load() {
		return nil, false, ErrEngineClosed
	}

	off, exists := e.core.index.Get(key)
	if !exists {
		return nil, false, nil
	}

	reader, err := e.readerFor(off.SegmentID)
	if err != nil {
		return nil, false, err
	}

	rec, err := reader.ReadRange(off.Start, off.End)
	if err != nil {
		return nil, false, err
	}

	if rec.Kind != record.KindSet {
		e.core.log.Errorw(
			"index entry pointed at a non-Set record", "key", key, "segmentId", off.SegmentID, "kind", rec.Kind,
		)
		return nil, false, nil
	}

	return rec.Value, true, nil
}

// Set encodes a Set record, appends it to the active segment, and records
// the new offset in the index. If key already had an entry, the bytes it
// occupied become stale; if the running stale-byte total then crosses the
// configured threshold, compaction runs inline before Set returns.
func (e *Engine) Set(key string, value []byte) error {
	if e.core.closed.Load() {
		return ErrEngineClosed
	}

	e.core.writerMu.Lock()
	defer e.core.writerMu.Unlock()

	segID, start, end, err := e.core.storage.Append(record.Set(key, value))
	if err != nil {
		return err
	}

	prev, existed := e.core.index.Set(key, index.Offset{SegmentID: segID, Start: start, End: end})
	if existed {
		e.core.uncompacted += prev.Size()
	}

	if compaction.ShouldCompact(e.core.uncompacted, e.core.options.CompactionThreshold) {
		return e.compact()
	}

	return nil
}

// Remove deletes key's entry and appends a tombstone record. It fails with
// a KeyNotFound IndexError if key currently has no entry; no tombstone is
// written in that case.
func (e *Engine) Remove(key string) error {
	if e.core.closed.Load() {
		return ErrEngineClosed
	}

	e.core.writerMu.Lock()
	defer e.core.writerMu.Unlock()

	prev, existed := e.core.index.Get(key)
	if !existed {
		return errors.NewKeyNotFoundError(key).WithOperation("Remove")
	}

	_, start, end, err := e.core.storage.Append(record.Remove(key))
	if err != nil {
		return err
	}

	e.core.index.Delete(key)
	e.core.uncompacted += prev.Size()
	e.core.uncompacted += end - start

	if compaction.ShouldCompact(e.core.uncompacted, e.core.options.CompactionThreshold) {
		return e.compact()
	}

	return nil
}

// compact rewrites every live index entry into a fresh segment and retires
// every older one. Callers must hold core.writerMu for its entire duration;
// Set and Remove call it inline once they cross the stale-byte threshold.
func (e *Engine) compact() error {
	active := e.core.storage.ActiveID()
	plan := compaction.NextIDs(active)

	staleIDs, err := e.core.storage.DiscoverAll()
	if err != nil {
		return err
	}

	writer, err := e.core.storage.OpenWriterFor(plan.Compacted)
	if err != nil {
		return err
	}

	type liveEntry struct {
		key string
		off index.Offset
	}

	var live []liveEntry
	e.core.index.Range(func(key string, off index.Offset) bool {
		live = append(live, liveEntry{key: key, off: off})
		return true
	})

	newEntries := make(map[string]index.Offset, len(live))
	for _, entry := range live {
		reader, err := e.readerFor(entry.off.SegmentID)
		if err != nil {
			_ = writer.Close()
			return err
		}

		var buf bytes.Buffer
		if _, err := reader.CopyRange(entry.off.Start, entry.off.End, &buf); err != nil {
			_ = writer.Close()
			return err
		}

		start, end, err := writer.Append(buf.Bytes())
		if err != nil {
			_ = writer.Close()
			return err
		}

		newEntries[entry.key] = index.Offset{SegmentID: plan.Compacted, Start: start, End: end}
	}

	if err := writer.Close(); err != nil {
		return err
	}

	if err := e.core.storage.Rotate(plan.Next); err != nil {
		return err
	}

	e.core.index.Replace(newEntries)
	e.core.watermark.Store(plan.Compacted)
	e.core.uncompacted = 0
	e.pruneReaders()

	for _, id := range staleIDs {
		if err := e.core.storage.Remove(id); err != nil {
			e.core.log.Errorw("failed to delete retired segment", "segmentId", id, "error", err)
		}
	}

	e.core.log.Infow(
		"compaction finished",
		"compactedSegment", plan.Compacted,
		"newActiveSegment", plan.Next,
		"liveKeys", len(newEntries),
		"retiredSegments", len(staleIDs),
	)

	return nil
}

// readerFor returns this handle's cached reader for segment id, opening and
// caching one on first use. It first prunes any cached reader whose
// segment id has fallen below the current watermark, since a segment that
// low has been deleted by a compaction and its fd would otherwise leak.
func (e *Engine) readerFor(id uint32) (*segment.Reader, error) {
	e.pruneReaders()

	e.readersMu.Lock()
	defer e.readersMu.Unlock()

	if r, ok := e.readers[id]; ok {
		return r, nil
	}

	r, err := e.core.storage.OpenReader(id)
	if err != nil {
		return nil, err
	}

	e.readers[id] = r
	return r, nil
}

// pruneReaders closes and discards every cached reader whose segment id is
// below the current watermark.
func (e *Engine) pruneReaders() {
	e.readersMu.Lock()
	defer e.readersMu.Unlock()

	watermark := e.core.watermark.Load()
	for id, r := range e.readers {
		if id < watermark {
			_ = r.Close()
			delete(e.readers, id)
		}
	}
}

// VerifySegments streams every segment file currently on disk through a
// CRC32 checksum and returns one fingerprint per segment id. It does not
// consult these checksums on the read/write path; it exists so an operator
// can snapshot a fingerprint before a backup or a copy and diff it against
// a later run to detect silent corruption.
func (e *Engine) VerifySegments() (map[uint32]uint32, error) {
	if e.core.closed.Load() {
		return nil, ErrEngineClosed
	}

	ids, err := e.core.storage.DiscoverAll()
	if err != nil {
		return nil, err
	}

	sums := make(map[uint32]uint32, len(ids))
	for _, id := range ids {
		sum, err := segment.Checksum(seginfo.Path(e.core.storage.DataDir(), id))
		if err != nil {
			return nil, err
		}
		sums[id] = sum
	}

	return sums, nil
}

// Close releases every reader this handle has cached, then, once across
// every clone sharing this core, closes the shared active writer and
// index. It is safe to call on any clone; later calls (from this or other
// clones) are no-ops once the core is already closed.
func (e *Engine) Close() error {
	e.pruneReaders()

	e.readersMu.Lock()
	for id, r := range e.readers {
		if err := r.Close(); err != nil {
			e.core.log.Errorw("failed to close cached reader", "segmentId", id, "error", err)
		}
	}
	e.readers = nil
	e.readersMu.Unlock()

	if !e.core.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs error
	if err := e.core.storage.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := e.core.index.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}

	return errs
}
