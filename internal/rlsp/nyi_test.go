package rlsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
)

func TestNyiServerReturnsANamedNotImplementedError(t *testing.T) {
	var s nyiServer

	err := s.LogTrace(context.Background(), &protocol.LogTraceParams{})
	assert.EqualError(t, err, "not implemented: LogTrace")

	err = s.WorkDoneProgressCancel(context.Background(), &protocol.WorkDoneProgressCancelParams{})
	assert.EqualError(t, err, "not implemented: WorkDoneProgressCancel")
}

func TestNyiServerInitializedIsANoOp(t *testing.T) {
	var s nyiServer
	assert.NoError(t, s.Initialized(context.Background(), &protocol.InitializedParams{}))
}
