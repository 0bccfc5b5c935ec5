package rlsp

import (
	"context"
	"runtime/debug"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/F1R3FLY-io/rholang-lsp/internal/feature"
)

// semanticTokensOptions works around the same go.lsp.dev/protocol gap the
// teacher's own Initialize comments ("The LSP protocol library doesn't
// actually provide SemanticTokensOptions correctly"): the wire shape needs
// a nested legend object the published struct doesn't model, so this
// project defines its own, reusing internal/feature's token legend so the
// two halves of semantic tokens support can never drift out of sync.
type semanticTokensLegend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

type semanticTokensOptions struct {
	protocol.WorkDoneProgressOptions

	Legend semanticTokensLegend `json:"legend"`
	Full   bool                 `json:"full"`
}

// Initialize is the first request a client sends (spec §4.11). It
// advertises every capability this module actually implements; everything
// else is left at its zero value, which LSP clients interpret as
// unsupported.
func (s *server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.mu.Lock()
	s.clientInfo = &params.Capabilities
	s.mu.Unlock()

	info := &protocol.ServerInfo{Name: "rholang-lsp"}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.Version = buildInfo.Main.Version
	}

	return &protocol.InitializeResult{
		ServerInfo: info,
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				// Whole documents are sent on every change (spec §4.11 step 2
				// tolerates a full reparse; edits are an optional incremental
				// fast path this module doesn't require from the client).
				Change: protocol.TextDocumentSyncKindFull,
			},
			HoverProvider:             true,
			DefinitionProvider:        true,
			ReferencesProvider:        true,
			DocumentHighlightProvider: true,
			DocumentSymbolProvider:    true,
			WorkspaceSymbolProvider:   true,
			RenameProvider: &protocol.RenameOptions{
				PrepareProvider: false,
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"."},
			},
			SemanticTokensProvider: &semanticTokensOptions{
				Legend: semanticTokensLegend{
					TokenTypes:     feature.TokenTypesLegend,
					TokenModifiers: feature.TokenModifiersLegend,
				},
				Full: true,
			},
		},
	}, nil
}

// Initialized is a notification that Initialize's response was received;
// there is nothing left to set up at that point (watchers, workspace, and
// rnode are already live by the time Serve returns).
func (s *server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	return nil
}

// SetTrace updates the $/setTrace verbosity, used only to decide whether to
// mirror LogTrace notifications to the client (not currently emitted, but
// the field is kept so a future diagnostic-tracing pass has somewhere to
// read the setting from without another round trip).
func (s *server) SetTrace(ctx context.Context, params *protocol.SetTraceParams) error {
	s.traceValue.Store(&params.Value)
	return nil
}

// Shutdown asks the server to stop accepting new work; the connection
// itself closes on the subsequent Exit notification.
func (s *server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	return nil
}

// Exit tears the connection down once the client has acknowledged Shutdown.
func (s *server) Exit(ctx context.Context) error {
	if err := s.Close(); err != nil {
		s.logger.Warn("error during shutdown", zap.Error(err))
	}
	return s.conn.Close()
}
