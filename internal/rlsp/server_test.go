package rlsp

import (
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/rholang-lsp/internal/rnode"
	"github.com/F1R3FLY-io/rholang-lsp/internal/workspace"
)

func TestServerCloseClosesWatcherAndRNodeClient(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)

	rc, err := rnode.Dial("127.0.0.1:0")
	require.NoError(t, err)

	s := &server{
		ws:      workspace.New(),
		rnode:   rc,
		watcher: watcher,
	}

	assert.NoError(t, s.Close())
	// A second Close on an already-closed watcher must not panic; whether it
	// errors is up to fsnotify, but Close must return cleanly either way.
	assert.NotPanics(t, func() { _ = s.Close() })
}

func TestServerCloseToleratesANilRNodeClient(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)

	s := &server{
		ws:      workspace.New(),
		rnode:   nil,
		watcher: watcher,
	}

	assert.NoError(t, s.Close())
}
