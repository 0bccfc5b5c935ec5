package rlsp

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// DidOpen indexes a freshly opened document (spec §4.11 step 1: "didOpen
// triggers a full reparse").
func (s *server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	diags, err := s.ws.IndexDocument(ctx, uri, params.TextDocument.Version, params.TextDocument.Text, nil)
	if err != nil {
		s.logger.Warn("didOpen index failed", zap.String("uri", string(uri)), zap.Error(err))
		return err
	}
	return s.publishDiagnostics(ctx, uri, diags)
}

// DidChange reparses a document on every change. Text sync is full-document
// (spec §4.11's incremental path is optional; Initialize advertises
// TextDocumentSyncKindFull), so edits is always nil here.
func (s *server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	diags, err := s.ws.IndexDocument(ctx, uri, params.TextDocument.Version, text, nil)
	if err != nil {
		s.logger.Warn("didChange index failed", zap.String("uri", string(uri)), zap.Error(err))
		return err
	}
	return s.publishDiagnostics(ctx, uri, diags)
}

// DidClose drops the document from the workspace, freeing its tree-sitter
// state and purging its contributions to the cross-file tables.
func (s *server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.ws.Drop(params.TextDocument.URI)
	return nil
}

// DidChangeWatchedFiles reindexes files the client's file-watcher reported
// changing on disk but that aren't necessarily open as editor buffers
// (component C11, spec §4.11 "bulk indexing"): a dependency one open
// document references may itself never be opened, so this is how its
// global symbols and contracts stay current.
func (s *server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, change := range params.Changes {
		switch change.Type {
		case protocol.FileChangeTypeDeleted:
			s.ws.Drop(change.URI)
		default:
			text, err := os.ReadFile(change.URI.Filename())
			if err != nil {
				// spec §7 "IO errors during indexing: logged, the offending file
				// is skipped; indexing continues for the rest".
				s.logger.Warn("could not read watched file", zap.String("uri", string(change.URI)), zap.Error(err))
				continue
			}
			if _, err := s.ws.IndexDocument(ctx, change.URI, 0, string(text), nil); err != nil {
				s.logger.Warn("watched-file index failed", zap.String("uri", string(change.URI)), zap.Error(err))
			}
		}
	}
	return nil
}

// publishDiagnostics notifies the client of a document's current
// diagnostics, mirroring the teacher's own updateDiagnostics.
func (s *server) publishDiagnostics(ctx context.Context, uri protocol.URI, diags []protocol.Diagnostic) error {
	if diags == nil {
		diags = []protocol.Diagnostic{}
	}
	return s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// watchFiles drains fsnotify write events and reindexes the affected
// document, the same event-loop shape the teacher's own newServer spawns
// (private/buf/buflsp/buflsp.go), generalized from a single fileCache
// lookup to the workspace's URI-keyed document map.
func (s *server) watchFiles(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			uri := protocol.URI("file://" + event.Name)
			if _, found := s.ws.Get(uri); !found {
				continue
			}
			text, err := os.ReadFile(event.Name)
			if err != nil {
				s.logger.Warn("could not read changed file", zap.String("path", event.Name), zap.Error(err))
				continue
			}
			if _, err := s.ws.IndexDocument(ctx, uri, 0, string(text), nil); err != nil {
				s.logger.Warn("watcher-triggered index failed", zap.String("path", event.Name), zap.Error(err))
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// watchClientProcess polls pid at a fixed interval and calls onExit once it
// can no longer be signaled, implementing the --client-process-id watchdog
// (spec §6) most LSP servers use to avoid outliving an editor that crashed
// without sending shutdown/exit.
func watchClientProcess(ctx context.Context, pid int32, onExit func()) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			proc, err := os.FindProcess(int(pid))
			if err != nil {
				onExit()
				return
			}
			if err := proc.Signal(syscall.Signal(0)); err != nil {
				onExit()
				return
			}
		}
	}
}
