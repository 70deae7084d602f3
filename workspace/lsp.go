package workspace

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dhamidi/pegcss/peg"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const lsName = "pegcss"

// LSPServer publishes a diagnostic at the farthest failure of every
// style sheet the client opens, changes or saves.
type LSPServer struct {
	workspace *Workspace
	grammar   *peg.Grammar
	opts      []Option
	handler   protocol.Handler
	server    *server.Server
	version   string
}

func NewLSPServer(g *peg.Grammar, version string, opts ...Option) *LSPServer {
	ls := &LSPServer{
		grammar: g,
		opts:    opts,
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.workspace = New(rootDir, ls.grammar, ls.opts...)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// initialized checks the whole root directory and reports the files
// that fail.
func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.workspace.ScanAll(context.Background()); err != nil {
		log.Errorf("%s", err)
		return nil
	}
	for _, f := range ls.workspace.Failed() {
		ls.publish(ctx, pathToURI(f.Path), f)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return ls.update(ctx, params.TextDocument.URI, []byte(params.TextDocument.Text))
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		return ls.update(ctx, params.TextDocument.URI, []byte(textChange.Text))
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.publish(ctx, params.TextDocument.URI, nil)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		return ls.update(ctx, params.TextDocument.URI, []byte(*params.Text))
	}
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	f, err := ls.workspace.ScanFile(path)
	if err != nil {
		log.Errorf("%s", err)
		return nil
	}
	ls.publish(ctx, params.TextDocument.URI, f)
	return nil
}

func (ls *LSPServer) update(ctx *glsp.Context, uri protocol.DocumentUri, content []byte) error {
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	f, err := ls.workspace.UpdateFile(path, content)
	if err != nil {
		return err
	}
	ls.publish(ctx, uri, f)
	return nil
}

// publish replaces the client's diagnostics for uri. A nil file clears them.
func (ls *LSPServer) publish(ctx *glsp.Context, uri protocol.DocumentUri, f *FileInfo) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: Diagnostics(f),
	})
}

// Diagnostics converts a check result to LSP diagnostics: none for a
// file that parsed, otherwise one error at the farthest failure.
func Diagnostics(f *FileInfo) []protocol.Diagnostic {
	out := []protocol.Diagnostic{}
	if f == nil || f.OK || f.Diagnostic == nil {
		return out
	}
	d := f.Diagnostic
	prefix := d.Source[:min(d.Column-1, len(d.Source))]
	start := protocol.Position{
		Line:      protocol.UInteger(d.Line - 1),
		Character: protocol.UInteger(utf16Len(prefix)),
	}
	end := start
	if d.Character() != "" {
		r, _ := utf8.DecodeRuneInString(d.Source[d.Column-1:])
		end.Character += protocol.UInteger(max(utf16.RuneLen(r), 1))
	}
	severity := protocol.DiagnosticSeverityError
	source := lsName
	return append(out, protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  d.Message(),
	})
}

// utf16Len returns the length of s in UTF-16 code units, the unit of
// LSP character offsets.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += max(utf16.RuneLen(r), 1)
	}
	return n
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
