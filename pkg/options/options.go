// Package options provides data structures and functions for configuring
// an ignite store. It defines the parameters that control where segment
// files live, when compaction runs, and how the TCP dispatcher listens and
// schedules work.
package options

import "strings"

// Options defines the configuration parameters for an ignite store.
type Options struct {
	// DataDir is the base path segment files are stored under, directly
	// (no segments/ subdirectory, no filename prefix) as "<id>.log".
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// CompactionThreshold is the number of accounted stale bytes that must
	// accumulate in the log before a Set or Remove triggers inline
	// compaction as part of that same write.
	//
	// Default: 64MB
	CompactionThreshold uint64 `json:"compactionThreshold"`

	// ListenAddress is the host:port the TCP dispatcher binds to.
	//
	// Default: "127.0.0.1:4000"
	ListenAddress string `json:"listenAddress"`

	// WorkerPoolSize is the number of persistent goroutines the dispatcher
	// uses to service accepted connections.
	//
	// Default: 4
	WorkerPoolSize int `json:"workerPoolSize"`

	// ConnectionQueueSize bounds how many accepted connections can be
	// waiting for a free worker before Submit blocks the accept loop.
	//
	// Default: 64
	ConnectionQueueSize int `json:"connectionQueueSize"`
}

// OptionFunc is a function that modifies an ignite store's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies ignite's baseline configuration values.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDataDir sets the directory segment files are stored under.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithCompactionThreshold sets the stale-byte threshold that triggers
// inline compaction.
func WithCompactionThreshold(threshold uint64) OptionFunc {
	return func(o *Options) {
		if threshold > 0 {
			o.CompactionThreshold = threshold
		}
	}
}

// WithListenAddress sets the address the TCP dispatcher binds to.
func WithListenAddress(addr string) OptionFunc {
	return func(o *Options) {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			o.ListenAddress = addr
		}
	}
}

// WithWorkerPoolSize sets the number of persistent workers the dispatcher
// schedules connection handling onto.
func WithWorkerPoolSize(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.WorkerPoolSize = n
		}
	}
}

// WithConnectionQueueSize sets how many accepted connections may queue for
// a free worker before the accept loop blocks.
func WithConnectionQueueSize(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.ConnectionQueueSize = n
		}
	}
}

// FormatBytes renders a byte count in decimal (SI) units for log lines,
// e.g. "67.11MB" for 64 MiB rather than a raw integer.
func FormatBytes(n uint64) string {
	return humanSize(n)
}
