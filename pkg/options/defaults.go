package options

const (
	// DefaultDataDir is the base directory ignite stores its segment files
	// in when no other directory is specified during initialization.
	DefaultDataDir = "/var/lib/ignitedb"

	// DefaultCompactionThreshold is the number of stale (overwritten or
	// removed) bytes accumulated across the log before a write triggers
	// inline compaction.
	DefaultCompactionThreshold uint64 = 64 * 1024 * 1024

	// DefaultListenAddress is the address the TCP dispatcher binds to when
	// no address is supplied.
	DefaultListenAddress = "127.0.0.1:4000"

	// DefaultWorkerPoolSize is the number of persistent workers the
	// dispatcher's pool keeps running to service client connections.
	DefaultWorkerPoolSize = 4

	// DefaultConnectionQueueSize bounds how many accepted-but-not-yet-
	// scheduled connections the dispatcher will hold before Submit blocks.
	DefaultConnectionQueueSize = 64
)

// defaultOptions holds the baseline configuration applied before any
// functional option overrides it.
var defaultOptions = Options{
	DataDir:             DefaultDataDir,
	CompactionThreshold: DefaultCompactionThreshold,
	ListenAddress:       DefaultListenAddress,
	WorkerPoolSize:      DefaultWorkerPoolSize,
	ConnectionQueueSize: DefaultConnectionQueueSize,
}

// NewDefaultOptions returns a copy of ignite's baseline configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
