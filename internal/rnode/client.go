// Package rnode implements the thin evaluator-facing client component C12
// names (spec §4.12, SPEC_FULL.md DOMAIN STACK "rnode gRPC client"): a
// connection to a running RChain/F1R3FLY node that the MeTTa hover and
// diagnostics providers can ask to evaluate a ground expression. Only a
// client stub is defined here, not the full rnode proto service (out of
// scope per spec §1's "Non-goals": this project does not re-implement or
// vendor rnode's protobuf definitions) — Evaluate sends a plain
// wrapperspb.StringValue carrying the serialized MeTTa expression and
// decodes the node's textual reply the same way, rather than fabricating
// generated .pb.go stubs for a service this module doesn't own.
package rnode

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// evaluateMethod is rnode's gRPC evaluator endpoint. Naming it as a string
// constant rather than a generated method avoids committing this module to
// rnode's full service definition while still dialing the real wire
// protocol (spec §4.12 "a generated client stub interface is defined, not
// a full proto service").
const evaluateMethod = "/rnode.Evaluator/Evaluate"

// Client is a connection to one rnode instance. The zero value is not
// usable; construct with Dial.
type Client struct {
	address string
	conn    *grpc.ClientConn
}

// Dial opens a gRPC connection to address (host:port, spec §6's
// --rnode-address/--rnode-port flags). The connection is established
// lazily by grpc-go's own dial machinery; Dial itself only validates the
// target and registers the channel, matching grpc.NewClient's documented
// non-blocking contract so a server startup never blocks on rnode being
// reachable (spec §7 "rnode unavailable" is a soft-fail condition, not a
// startup error).
func Dial(address string) (*Client, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("rnode: dial %s: %w", address, err)
	}
	return &Client{address: address, conn: conn}, nil
}

// Close releases the underlying gRPC channel.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Address reports the target this client was dialed against, for log
// messages and the rnode-unavailable diagnostic (spec §7).
func (c *Client) Address() string { return c.address }

// Evaluate sends expr (a serialized MeTTa ground expression) to rnode and
// returns its textual evaluation result (spec §4.12, §4.8 "rnode-backed
// evaluation hover"). A failure here is always reported to the caller as
// a soft condition (spec §7 "rnode unavailable": degrade gracefully, do
// not fail the whole request) — Evaluate itself just returns the error and
// leaves that decision to the caller.
func (c *Client) Evaluate(ctx context.Context, expr string) (string, error) {
	req := wrapperspb.String(expr)
	resp := &wrapperspb.StringValue{}
	if err := c.conn.Invoke(ctx, evaluateMethod, req, resp); err != nil {
		return "", fmt.Errorf("rnode: evaluate: %w", err)
	}
	return resp.GetValue(), nil
}
