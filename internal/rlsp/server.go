// Package rlsp implements the server entry point component C11 names (spec
// §4.11, §6 "wire protocol: LSP over jsonrpc2"): the protocol.Server
// implementation that binds internal/workspace, internal/virtual, and
// internal/feature to an actual jsonrpc2 connection, plus the lifecycle and
// text-sync handlers that drive them. It is grounded on the language server
// this project is modeled after (private/buf/buflsp's server/nopServer
// split and its NewServer/fsnotify wiring), generalized from Protobuf
// documents to Rholang parent documents and MeTTa virtuals.
package rlsp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/F1R3FLY-io/rholang-lsp/internal/rnode"
	"github.com/F1R3FLY-io/rholang-lsp/internal/workspace"
)

// Options configures a server before it starts serving requests.
type Options struct {
	Logger *zap.Logger
	// RNode is nil when the client was started with --no-rnode or rnode was
	// unreachable at startup (spec §7 "rnode unavailable" is soft-fail).
	RNode *rnode.Client
	// ClientProcessID, when non-zero, makes the server watch that pid and
	// exit if it disappears (spec §6 --client-process-id), the same
	// "orphaned server" guard most LSP servers implement.
	ClientProcessID int32
}

// server is the protocol.Server implementation. Unimplemented methods fall
// through to the embedded nyiServer (see nyi.go), matching the teacher's own
// nopServer-embedding pattern.
type server struct {
	nyiServer

	logger *zap.Logger
	ws     *workspace.Workspace
	rnode  *rnode.Client
	conn   jsonrpc2.Conn

	watcher *fsnotify.Watcher

	mu         sync.Mutex
	clientInfo *protocol.ClientCapabilities
	traceValue atomic.Pointer[protocol.TraceValue]
	shutdown   bool
}

// Serve binds a new server to stream and starts the jsonrpc2 message pump,
// returning the live connection once the client can start issuing requests.
// Callers wait on conn.Done() and use conn.Err() for the exit code, exactly
// the pattern the teacher's own CLI command uses around buflsp.Serve.
func Serve(ctx context.Context, stream jsonrpc2.Stream, opts Options) (conn jsonrpc2.Conn, retErr error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("rlsp: create file watcher: %w", err)
	}
	defer func() {
		if retErr != nil {
			retErr = multierr.Append(retErr, watcher.Close())
		}
	}()

	ws := workspace.New()

	s := &server{
		logger:  logger,
		ws:      ws,
		rnode:   opts.RNode,
		watcher: watcher,
	}

	conn = jsonrpc2.NewConn(stream)
	s.conn = conn

	go s.watchFiles(ctx)
	if opts.ClientProcessID != 0 {
		go watchClientProcess(ctx, opts.ClientProcessID, func() {
			logger.Warn("client process exited, shutting down", zap.Int32("pid", opts.ClientProcessID))
			_ = conn.Close()
		})
	}

	conn.Go(ctx, protocol.ServerHandler(s, jsonrpc2.MethodNotFoundHandler))

	return conn, nil
}

// Close releases the workspace, rnode client, and file watcher this server
// owns, aggregating every close error the way the teacher's own run()
// aggregates wasmRuntime.Close via multierr.Append.
func (s *server) Close() error {
	var err error
	if s.watcher != nil {
		err = multierr.Append(err, s.watcher.Close())
	}
	if s.rnode != nil {
		err = multierr.Append(err, s.rnode.Close())
	}
	s.ws.Close()
	return err
}
