// Command rholang-lsp starts the Rholang/MeTTa language server (spec §6
// "CLI surface"). Its flag surface and dial-then-serve shape are grounded
// on the teacher's own beta lsp command (private/buf/cmd/buf/command/beta/
// lsp/lsp.go), switched from buf's private appcmd/appflag framework (not
// reusable outside buf's own CLI tree) to a direct spf13/cobra root
// command, the way this project's pack represents a standalone CLI
// (_examples/josephgoksu-TaskWing/cmd/mcp_server.go).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/F1R3FLY-io/rholang-lsp/internal/rlsp"
	"github.com/F1R3FLY-io/rholang-lsp/internal/rnode"
)

var flagSet struct {
	stdio           bool
	socket          bool
	pipe            string
	websocket       bool
	port            int
	clientProcessID int32
	logLevel        string
	noColor         bool
	rnodeAddress    string
	rnodePort       int
	noRNode         bool
}

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rholang-lsp",
		Short: "Language server for Rholang with embedded MeTTa support",
		Long: "rholang-lsp implements the Language Server Protocol for Rholang source\n" +
			"files, including goto-definition, references, rename, hover, semantic\n" +
			"tokens, and completion across embedded MeTTa fragments.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&flagSet.stdio, "stdio", false, "serve over stdin/stdout (default transport)")
	flags.BoolVar(&flagSet.socket, "socket", false, "serve over a TCP socket on --port")
	flags.StringVar(&flagSet.pipe, "pipe", "", "serve over a UNIX domain socket at this path")
	flags.BoolVar(&flagSet.websocket, "websocket", false, "serve over a WebSocket on --port")
	flags.IntVar(&flagSet.port, "port", 0, "port for --socket or --websocket")
	flags.Int32Var(&flagSet.clientProcessID, "client-process-id", 0, "exit if this process id disappears")
	flags.StringVar(&flagSet.logLevel, "log-level", "info", "debug, info, warn, or error")
	flags.BoolVar(&flagSet.noColor, "no-color", false, "disable ANSI color in stderr log output")
	flags.StringVar(&flagSet.rnodeAddress, "rnode-address", "localhost", "rnode gRPC host")
	flags.IntVar(&flagSet.rnodePort, "rnode-port", 40412, "rnode gRPC port")
	flags.BoolVar(&flagSet.noRNode, "no-rnode", false, "do not connect to rnode")

	return cmd
}

// run dials the selected transport, constructs the server's dependencies,
// and blocks until the client disconnects, mirroring the teacher's own
// run()'s dial-then-Serve-then-wait shape.
func run(ctx context.Context) (retErr error) {
	logger, sessionID, closeLog, err := rlsp.NewLogger(flagSet.logLevel, flagSet.noColor)
	if err != nil {
		return fmt.Errorf("rholang-lsp: %w", err)
	}
	defer func() {
		retErr = multierr.Append(retErr, closeLog())
	}()
	fields := []zap.Field{
		zap.String("session", sessionID),
		zap.String("log-level", flagSet.logLevel),
	}
	if flagSet.pipe != "" {
		fields = append(fields, zap.String("pipe", string(rlsp.PipeURI(flagSet.pipe))))
	}
	logger.Info("starting rholang-lsp", fields...)

	var rnodeClient *rnode.Client
	if !flagSet.noRNode {
		target := fmt.Sprintf("%s:%d", flagSet.rnodeAddress, flagSet.rnodePort)
		rnodeClient, err = rnode.Dial(target)
		if err != nil {
			// spec §7 "rnode unavailable" is a soft-fail: the server still
			// starts, just without an rnode client.
			logger.Warn("rnode unreachable, continuing without it", zap.Error(err))
			rnodeClient = nil
		}
	}

	transport, err := rlsp.Dial(transportConfig())
	if err != nil {
		return fmt.Errorf("rholang-lsp: %w", err)
	}

	conn, err := rlsp.Serve(ctx, jsonrpc2.NewStream(transport), rlsp.Options{
		Logger:          logger,
		RNode:           rnodeClient,
		ClientProcessID: flagSet.clientProcessID,
	})
	if err != nil {
		return fmt.Errorf("rholang-lsp: serve: %w", err)
	}

	<-conn.Done()
	return conn.Err()
}

func transportConfig() rlsp.TransportConfig {
	switch {
	case flagSet.pipe != "":
		return rlsp.TransportConfig{PipePath: flagSet.pipe}
	case flagSet.socket:
		return rlsp.TransportConfig{SocketPort: flagSet.port}
	case flagSet.websocket:
		return rlsp.TransportConfig{WebSocketPort: flagSet.port}
	default:
		return rlsp.TransportConfig{}
	}
}
