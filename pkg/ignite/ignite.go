// Package ignite provides a high-performance key/value data store
// designed for fast read and write operations, inspired by Bitcask.
// It combines an in-memory hash table (KeyDir/Index) with an append-only log
// structure on disk to achieve high throughput. It is designed for applications
// requiring fast read and write operations, such as caching, session management,
// and real-time data processing, aiming to provide a simple, efficient, and
// reliable solution for embedded data storage in Go applications: keys and
// their offsets are held in memory, values live in on-disk segment files.
package ignite

import (
	"context"

	"github.com/iamNilotpal/ignite/internal/engine"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/iamNilotpal/ignite/pkg/options"
)

// Represents an instance of the Ignite key/value data store.
// It encapsulates the core engine responsible for data handling and
// the configuration options for this specific database instance.
//
// Instance is the primary entry point for interacting with the Ignite store,
// providing methods for setting, getting, and deleting key-value pairs.
type Instance struct {
	engine  *engine.Engine   // The underlying database engine handling read/write operations.
	options *options.Options // Configuration options applied to this DB instance.
}

// Creates and initializes a new Ignite DB instance.
func NewInstance(context context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	// Initialize a logger for the given service.
	log := logger.New(service)

	// Initialize default options.
	defaultOpts := options.NewDefaultOptions()

	// Apply any provided functional options to override defaults.
	if len(opts) > 0 {
		for _, opt := range opts {
			opt(&defaultOpts)
		}
	}

	// Create a new internal engine with the initialized logger.
	eng, err := engine.New(context, &engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// Set stores a key-value pair in the database.
// If the key already exists, its value will be updated.
// The record is appended to the log and flushed to the file before Set
// returns; it is not fsynced, so durability across a crash is best-effort.
func (i *Instance) Set(context context.Context, key string, value []byte) error {
	return i.engine.Set(key, value)
}

// Get retrieves the value associated with the given key. ok is false if
// the key has no current entry.
func (i *Instance) Get(context context.Context, key string) (value []byte, ok bool, err error) {
	return i.engine.Get(key)
}

// Delete removes a key-value pair from the database. It fails if the key
// has no current entry.
func (i *Instance) Delete(context context.Context, key string) error {
	return i.engine.Remove(key)
}

// Handle returns a new Instance sharing this one's underlying store but
// with its own segment reader cache, suitable for handing to a single
// dispatcher worker.
func (i *Instance) Handle() *Instance {
	return &Instance{engine: i.engine.Clone(), options: i.options}
}

// Close gracefully shuts down the Ignite DB instance, flushing the active
// segment and releasing every file handle this instance's engine holds.
func (i *Instance) Close(context context.Context) error {
	return i.engine.Close()
}
