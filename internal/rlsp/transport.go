package rlsp

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"go.lsp.dev/uri"
)

// TransportConfig selects one of the four wire transports spec §6 names
// (--stdio, --socket --port, --pipe, --websocket --port). Exactly one of
// the Socket/Pipe/WebSocket fields should be set; the zero value dials
// stdio, matching the teacher's own "falls back to stdio by default"
// behavior.
type TransportConfig struct {
	SocketPort    int
	PipePath      string
	WebSocketPort int
}

// Dial opens the connection the jsonrpc2 layer will frame messages over.
// This is a direct extension of the teacher's own dial() (same pipe-vs-stdio
// switch), adding the TCP and WebSocket transports the teacher's own
// comment flags as unimplemented ("Add other transport implementations,
// such as TCP, here!").
func Dial(cfg TransportConfig) (io.ReadWriteCloser, error) {
	switch {
	case cfg.PipePath != "":
		conn, err := net.Dial("unix", cfg.PipePath)
		if err != nil {
			return nil, fmt.Errorf("could not open IPC socket %s: %w", PipeURI(cfg.PipePath), err)
		}
		return conn, nil

	case cfg.SocketPort != 0:
		return dialSocket(cfg.SocketPort)

	case cfg.WebSocketPort != 0:
		return dialWebSocket(cfg.WebSocketPort)

	default:
		return compositeReadWriteCloser(os.Stdin, os.Stdout), nil
	}
}

// PipeURI renders a --pipe path as a file:// URI for logging, the same
// uri.File conversion the teacher applies to on-disk paths throughout
// buflsp.go before they ever reach the wire or a log line.
func PipeURI(path string) uri.URI {
	return uri.File(path)
}

// dialSocket listens once on the given port and accepts the first client,
// matching an editor's "connect to a long-running server" workflow for
// --socket (spec §6).
func dialSocket(port int) (io.ReadWriteCloser, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", port, err)
	}
	defer ln.Close()
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("accept on port %d: %w", port, err)
	}
	return conn, nil
}

// dialWebSocket listens once on the given port and accepts the first
// WebSocket upgrade, for editors that only embed a WebSocket client
// (spec §6 --websocket). wsReadWriteCloser adapts gorilla/websocket's
// message-framed Conn to the io.ReadWriteCloser jsonrpc2.NewStream expects.
func dialWebSocket(port int) (io.ReadWriteCloser, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	connCh := make(chan *websocket.Conn, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			select {
			case errCh <- err:
			default:
			}
			return
		}
		connCh <- c
	})

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", port, err)
	}

	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)

	select {
	case c := <-connCh:
		return &wsReadWriteCloser{conn: c}, nil
	case err := <-errCh:
		ln.Close()
		return nil, fmt.Errorf("websocket upgrade: %w", err)
	case <-time.After(5 * time.Minute):
		ln.Close()
		return nil, fmt.Errorf("websocket: no client connected on port %d within timeout", port)
	}
}

// wsReadWriteCloser adapts a gorilla/websocket connection's message framing
// to io.ReadWriteCloser, buffering a partially-consumed message between
// Read calls since websocket.Conn has no raw byte-stream Read.
type wsReadWriteCloser struct {
	conn *websocket.Conn
	buf  []byte
}

func (w *wsReadWriteCloser) Read(p []byte) (int, error) {
	if len(w.buf) == 0 {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		w.buf = data
	}
	n := copy(p, w.buf)
	w.buf = w.buf[n:]
	return n, nil
}

func (w *wsReadWriteCloser) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsReadWriteCloser) Close() error {
	return w.conn.Close()
}

// compositeReadWriteCloser pairs a reader and a writer into a single
// io.ReadWriteCloser, for stdio transport (spec §6 --stdio), mirroring the
// teacher's own ioext.CompositeReadWriteCloser without pulling in the
// teacher's internal ioext package.
type compositeRWC struct {
	io.Reader
	io.Writer
}

func (c compositeRWC) Close() error {
	if closer, ok := c.Reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func compositeReadWriteCloser(r io.Reader, w io.Writer) io.ReadWriteCloser {
	return compositeRWC{Reader: r, Writer: w}
}
