package engine

import (
	"sync"
	"sync/atomic"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/internal/storage"
	"github.com/iamNilotpal/ignite/pkg/options"
	"go.uber.org/zap"
)

// core holds everything shared across every clone of an Engine: the index,
// the active segment writer, and the writer-side bookkeeping (the
// uncompacted-byte counter and the compaction watermark). Exactly one core
// exists per opened store; Clone hands out new Engine values that all
// point at the same core.
type core struct {
	options *options.Options
	log     *zap.SugaredLogger
	index   *index.Index
	storage *storage.Storage

	// writerMu serializes Set, Remove, and compaction. It is the single
	// coarse lock spec's concurrency model calls for: one writer at a
	// time, compaction running inline inside the same critical section as
	// the write that triggered it.
	writerMu    sync.Mutex
	uncompacted uint64 // guarded by writerMu

	// watermark is the lowest segment id still guaranteed to exist on
	// disk. Segments below it have been deleted by compaction; any cached
	// reader for such an id is stale and must be evicted rather than reused.
	watermark atomic.Uint32
	closed    atomic.Bool
}

// Engine is one handle onto an ignite store. A handle is cheap to create
// via Clone: it shares the core (index, active writer, locks) with every
// other handle, but owns its own segment reader cache, so concurrent
// readers never contend with each other over a shared cache's lock. This
// is the idiomatic Go analog of giving each worker its own thread-local
// reader state.
type Engine struct {
	core      *core
	readersMu sync.Mutex
	readers   map[uint32]*segment.Reader
}

// Config holds the parameters needed to open a new Engine.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}
