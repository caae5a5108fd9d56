package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Offset locates one live record within the segment log: which segment it
// lives in, and its [Start, End) byte range within that segment.
type Offset struct {
	SegmentID uint32
	Start     uint64
	End       uint64
}

// Size returns the number of bytes the pointed-to record occupies on disk.
func (o Offset) Size() uint64 { return o.End - o.Start }

// Index is the in-memory hash table mapping keys to their on-disk
// location. It is the core Bitcask optimization: every key lives in
// memory, every value lives on disk, and a lookup is a single map access
// plus one seek.
type Index struct {
	dataDir string
	log     *zap.SugaredLogger
	entries map[string]Offset
	mu      sync.RWMutex
	closed  atomic.Bool
}

// Config encapsulates the configuration parameters required to initialize
// an Index.
type Config struct {
	DataDir string
	Logger  *zap.SugaredLogger
}
