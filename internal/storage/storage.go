// Package storage manages the directory of segment files backing an
// ignite store: discovering them on startup, owning the single active
// writer, and opening read-only handles to any segment (including the
// active one) on request. It has no notion of keys; internal/index and
// internal/engine are what turn "segment id + byte range" into "value for
// this key".
package storage

import (
	"context"
	stdErrors "errors"
	"sync"

	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/filesys"
	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/iamNilotpal/ignite/pkg/seginfo"
	"go.uber.org/zap"
)

var ErrStorageClosed = stdErrors.New("operation failed: cannot access closed storage")

// Storage owns the active segment writer and coordinates segment file
// lifecycle: creation at open, creation during compaction, and deletion
// once compaction has retired a segment. Exactly one Storage per engine
// core exists; it is shared across every cloned engine handle, guarded by
// mu for the operations that mutate which segment is active.
type Storage struct {
	mu      sync.Mutex
	dataDir string
	active  *segment.Writer
	options *options.Options
	log     *zap.SugaredLogger
}

// Config encapsulates the configuration parameters required to initialize
// a Storage instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New discovers existing segments under config.Options.DataDir and opens a
// brand new active writer one id past the highest one found (or segment 1
// on a bootstrap empty directory). The previous highest-id segment, if
// any, is left read-only; New never resumes appending to it.
func New(ctx context.Context, config *Config) (*Storage, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "storage configuration is required",
		).WithField("config").WithRule("required")
	}

	dataDir := config.Options.DataDir
	if err := filesys.CreateDir(dataDir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, dataDir)
	}

	ids, err := seginfo.Discover(dataDir)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to discover segments").
			WithPath(dataDir)
	}

	activeID := uint32(1)
	if len(ids) > 0 {
		activeID = ids[len(ids)-1] + 1
	}

	active, err := segment.OpenWriter(activeID, seginfo.Path(dataDir, activeID))
	if err != nil {
		return nil, err
	}

	config.Logger.Infow(
		"storage initialized",
		"dataDir", dataDir,
		"activeSegment", activeID,
		"activeSize", options.FormatBytes(active.Size()),
		"discoveredSegments", len(ids),
	)

	return &Storage{dataDir: dataDir, active: active, options: config.Options, log: config.Logger}, nil
}

// DataDir returns the directory segments are stored under.
func (s *Storage) DataDir() string { return s.dataDir }

// ActiveID returns the id of the segment currently accepting appends.
func (s *Storage) ActiveID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.ID()
}

// DiscoverAll lists every segment id currently on disk, ascending.
func (s *Storage) DiscoverAll() ([]uint32, error) {
	return seginfo.Discover(s.dataDir)
}

// Append writes rec to the active segment and returns its byte range.
func (s *Storage) Append(rec record.Record) (segID uint32, start, end uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end, err = s.active.AppendRecord(rec)
	return s.active.ID(), start, end, err
}

// OpenReader opens a read-only handle on segment id. Callers (engine
// clones) own the returned Reader and are responsible for closing it.
func (s *Storage) OpenReader(id uint32) (*segment.Reader, error) {
	return segment.OpenReader(id, seginfo.Path(s.dataDir, id))
}

// Rotate is called by compaction once it has written the live entries into
// segment `compacted` and wants `next` to become the new active segment.
// Rotate closes the current active writer and opens `next`, creating the
// file if it does not exist. The caller is responsible for deleting every
// segment below `compacted` only after Rotate returns successfully.
func (s *Storage) Rotate(next uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.active.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to close retiring active segment").
			WithSegmentID(int(s.active.ID()))
	}

	writer, err := segment.OpenWriter(next, seginfo.Path(s.dataDir, next))
	if err != nil {
		return err
	}

	s.active = writer
	return nil
}

// OpenWriterFor opens segment id for appending, used by compaction to
// stream the live entries into the compaction output segment before it
// becomes active.
func (s *Storage) OpenWriterFor(id uint32) (*segment.Writer, error) {
	return segment.OpenWriter(id, seginfo.Path(s.dataDir, id))
}

// Remove deletes segment id's file from disk. It is only ever called for
// segments compaction has already fully superseded.
func (s *Storage) Remove(id uint32) error {
	path := seginfo.Path(s.dataDir, id)
	if err := filesys.DeleteFile(path); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to delete retired segment").
			WithPath(path).WithSegmentID(int(id))
	}
	return nil
}

// Close flushes and closes the active segment writer.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Close()
}
