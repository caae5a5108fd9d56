// Package dispatcher accepts stream connections, decodes one request at a
// time, invokes the engine, and encodes one response per request. Every
// connection runs on a worker drawn from a bounded pool so many concurrent
// clients share a fixed number of goroutines.
package dispatcher

import (
	"context"
	stdErrors "errors"
	"io"
	"net"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ignite/internal/engine"
	"github.com/iamNilotpal/ignite/internal/protocol"
	"github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/workerpool"
)

// ErrClosed describes a dispatcher that has been closed. Run does not
// return it: once Close has closed the listener, Run returns nil.
var ErrClosed = stdErrors.New("operation failed: dispatcher is closed")

// Config holds the parameters needed to start a Dispatcher.
type Config struct {
	ListenAddress       string
	Engine              *engine.Engine
	WorkerPoolSize      int
	ConnectionQueueSize int
	Logger              *zap.SugaredLogger
}

// Dispatcher owns the listening socket and the worker pool every accepted
// connection is handed off to. One Dispatcher serves one engine instance
// for the lifetime of the process.
type Dispatcher struct {
	listener net.Listener
	engine   *engine.Engine
	pool     *workerpool.Pool
	log      *zap.SugaredLogger
	closed   atomic.Bool
}

// New binds config.ListenAddress and starts config.WorkerPoolSize workers.
// The listener is live as soon as New returns; call Run to start accepting.
func New(config *Config) (*Dispatcher, error) {
	if config == nil || config.Engine == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "dispatcher configuration is required",
		).WithField("config").WithRule("required")
	}

	listener, err := net.Listen("tcp", config.ListenAddress)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to bind listen address").
			WithPath(config.ListenAddress)
	}

	pool := workerpool.New(config.WorkerPoolSize, config.ConnectionQueueSize, config.Logger)

	config.Logger.Infow("dispatcher listening", "addr", listener.Addr().String())
	return &Dispatcher{listener: listener, engine: config.Engine, pool: pool, log: config.Logger}, nil
}

// Addr returns the address the dispatcher is bound to.
func (d *Dispatcher) Addr() net.Addr { return d.listener.Addr() }

// Run accepts connections until ctx is canceled or Close is called,
// handing each one to the worker pool on its own cloned engine handle.
// It blocks until the accept loop exits and returns nil on a clean
// shutdown.
func (d *Dispatcher) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = d.Close()
	}()

	for {
		conn, err := d.listener.Accept()
		if err != nil {
			if d.closed.Load() {
				return nil
			}
			return errors.NewStorageError(err, errors.ErrorCodeIO, "accept failed")
		}

		connID := uuid.NewString()
		handle := d.engine.Clone()
		log := d.log.With("connectionId", connID, "remoteAddr", conn.RemoteAddr().String())

		if err := d.pool.Submit(func() { serve(handle, conn, log) }); err != nil {
			log.Warnw("dropping connection, pool is closed", "error", err)
			_ = conn.Close()
		}
	}
}

// Close stops accepting new connections and waits for every in-flight
// connection's worker to finish.
func (d *Dispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := d.listener.Close()
	d.pool.Close()
	return err
}

// serve runs the decode-invoke-encode loop for one connection until the
// peer closes it or an I/O error occurs. Per-request engine errors are
// reported to the client and do not end the connection.
func serve(handle *engine.Engine, conn net.Conn, log *zap.SugaredLogger) {
	defer conn.Close()
	log.Debugw("connection opened")

	dec := protocol.NewDecoder(conn)
	enc := protocol.NewEncoder(conn)

	for {
		req, err := dec.DecodeRequest()
		if err == io.EOF {
			log.Debugw("connection closed by peer")
			return
		}
		if err != nil {
			log.Warnw("decode failed, closing connection", "error", err)
			return
		}

		resp := handle1(handle, req)
		if err := enc.EncodeResponse(resp); err != nil {
			log.Warnw("encode failed, closing connection", "error", err)
			return
		}
	}
}

// handle1 invokes the engine for req and maps the outcome onto a wire
// Response, per the boundary rules: a missing key on Get is a successful
// empty result, a missing key on Remove is a client-visible error, and any
// other engine failure carries its message through as an error response.
func handle1(handle *engine.Engine, req protocol.Request) protocol.Response {
	switch req.Kind {
	case protocol.KindGet:
		value, ok, err := handle.Get(req.Key)
		if err != nil {
			return protocol.ErrResponse(err.Error())
		}
		if !ok {
			return protocol.OkResponse(nil)
		}
		s := string(value)
		return protocol.OkResponse(&s)

	case protocol.KindSet:
		if err := handle.Set(req.Key, []byte(req.Value)); err != nil {
			return protocol.ErrResponse(err.Error())
		}
		return protocol.OkResponse(nil)

	case protocol.KindRemove:
		if err := handle.Remove(req.Key); err != nil {
			if errors.GetErrorCode(err) == errors.ErrorCodeKeyNotFound {
				return protocol.ErrResponse("Key not found")
			}
			return protocol.ErrResponse(err.Error())
		}
		return protocol.OkResponse(nil)

	default:
		return protocol.ErrResponse("unrecognized request kind")
	}
}
