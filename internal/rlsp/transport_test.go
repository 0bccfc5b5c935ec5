package rlsp

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialDefaultsToStdio(t *testing.T) {
	rwc, err := Dial(TransportConfig{})
	require.NoError(t, err)
	require.NotNil(t, rwc)

	_, err = rwc.Write([]byte{})
	assert.NoError(t, err)
}

func TestDialPipeReturnsAnErrorForAMissingSocket(t *testing.T) {
	missing := t.TempDir() + "/does-not-exist.sock"
	_, err := Dial(TransportConfig{PipePath: missing})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), PipeURI(missing).Filename())
}

func TestPipeURIRendersAFileURI(t *testing.T) {
	u := PipeURI("/tmp/rholang-lsp.sock")
	assert.Equal(t, "/tmp/rholang-lsp.sock", u.Filename())
	assert.Contains(t, string(u), "file://")
}

func TestCompositeReadWriteCloserClosesTheUnderlyingReader(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()

	rwc := compositeReadWriteCloser(r, w)
	assert.NoError(t, rwc.Close())
}
