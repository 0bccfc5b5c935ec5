package rnode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contextWithImmediateDeadline bounds an RPC against a target nothing is
// listening on so the test fails fast instead of hanging on grpc-go's
// connection backoff.
func contextWithImmediateDeadline(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	t.Cleanup(cancel)
	return ctx
}

func TestDialDoesNotBlockOnAnUnreachableAddress(t *testing.T) {
	// grpc.NewClient resolves lazily: Dial must succeed even though nothing
	// is listening on this address, the same "connect on first RPC" contract
	// the teacher's own RPC clients rely on.
	c, err := Dial("127.0.0.1:0")
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Close()

	assert.Equal(t, "127.0.0.1:0", c.Address())
}

func TestClientCloseIsSafeOnNilAndZeroValue(t *testing.T) {
	var nilClient *Client
	assert.NoError(t, nilClient.Close())

	zeroClient := &Client{}
	assert.NoError(t, zeroClient.Close())
}

func TestClientEvaluateFailsFastAgainstAnUnreachableTarget(t *testing.T) {
	c, err := Dial("127.0.0.1:0")
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Evaluate(contextWithImmediateDeadline(t), "(+ 1 1)")
	assert.Error(t, err)
}
