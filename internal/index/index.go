// Package index provides the in-memory key/offset map for the ignite
// key-value store. Every key known to the store lives in this map at all
// times; only values live on disk. This keeps reads to one map lookup plus
// one seek, at the cost of bounding total key count (not value count) to
// what fits in memory.
package index

import (
	"context"
	stdErrors "errors"

	"github.com/iamNilotpal/ignite/pkg/errors"
)

var ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")

// New creates and initializes a new Index instance, ready for immediate
// concurrent use.
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:     config.Logger,
		dataDir: config.DataDir,
		entries: make(map[string]Offset, 2046),
	}, nil
}

// Get returns the current offset for key, if any.
func (idx *Index) Get(key string) (Offset, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	off, ok := idx.entries[key]
	return off, ok
}

// Set records off as key's current location, returning whichever offset it
// displaced (if any). Callers use the displaced offset's Size to account
// for newly stale bytes.
func (idx *Index) Set(key string, off Offset) (prev Offset, existed bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	prev, existed = idx.entries[key]
	idx.entries[key] = off
	return prev, existed
}

// Delete removes key's entry entirely, returning the offset it held (if
// any). Used by the engine's Remove, which additionally appends a tombstone
// record; compaction swaps the whole map with Replace instead.
func (idx *Index) Delete(key string) (prev Offset, existed bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	prev, existed = idx.entries[key]
	delete(idx.entries, key)
	return prev, existed
}

// Len returns the current number of live keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Range calls fn for every live key/offset pair, stopping early if fn
// returns false. Range holds the read lock for its entire duration, so fn
// must not call back into the Index.
func (idx *Index) Range(fn func(key string, off Offset) bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for k, v := range idx.entries {
		if !fn(k, v) {
			return
		}
	}
}

// Replace atomically swaps in a freshly computed set of entries, used by
// compaction once the live set has been rewritten into a new segment.
func (idx *Index) Replace(entries map[string]Offset) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = entries
}

// Close shuts down the Index and releases its entries. A second Close
// returns ErrIndexClosed; Get, Set, Delete, Len, Range, and Replace do not
// check whether the index has been closed.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("closing index")

	idx.mu.Lock()
	defer idx.mu.Unlock()
	clear(idx.entries)
	idx.entries = nil

	return nil
}
