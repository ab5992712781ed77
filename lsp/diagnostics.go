// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"os"

	"github.com/luthersystems/nlint/lint"
	"github.com/luthersystems/nlint/session"
	"github.com/luthersystems/nlint/syntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const diagnosticSource = "nlint"

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	uri := params.TextDocument.URI
	doc := &Document{
		URI:     uri,
		Version: int32(params.TextDocument.Version),
		session: s.sessionFor(uriToPath(uri)),
	}
	s.docs.Put(doc)
	doc.session.Update(params.TextDocument.Text)
	s.refresh(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc.mu.Lock()
	doc.Version = int32(params.TextDocument.Version)
	doc.mu.Unlock()

	// The session debounces and publishes through its hook.
	doc.session.Update(content)
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.refresh(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := s.docs.Get(uri)
	s.docs.Close(uri)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})

	// Other documents may include this file; they see its saved text again.
	if doc != nil {
		if src, err := os.ReadFile(uriToPath(uri)); err == nil { //nolint:gosec // the client named this file
			doc.session.Update(string(src))
		}
	}
	return nil
}

// refresh analyzes doc immediately, following any includes it gained.
func (s *Server) refresh(doc *Document) {
	ctx := context.Background()
	snap, err := doc.session.ForceAnalysis(ctx)
	if err != nil {
		return
	}
	s.syncIncludes(doc.session, snap)
	if doc.session.Dirty() {
		_, _ = doc.session.ForceAnalysis(ctx)
	}
}

// analyzed is the session hook: it follows includes, wakes documents that
// include this one when its text changed, and publishes diagnostics when
// the document is open.
func (s *Server) analyzed(uri string, snap *session.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("uri", uri).Errorf("publish panic: %v", r)
		}
	}()
	sess := s.sessionFor(uriToPath(uri))
	s.syncIncludes(sess, snap)

	if s.advance(uri, snap.Version) {
		for _, dep := range s.dependents(sess) {
			dep.Invalidate()
		}
	}
	if s.docs.Get(uri) != nil {
		s.publish(uri, snap)
	}
}

// advance records version as the latest seen for uri and reports whether
// it is newer than the last one.
func (s *Server) advance(uri string, version int) bool {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if version <= s.versions[uri] {
		return false
	}
	s.versions[uri] = version
	return true
}

// publish lints snap and sends the diagnostics to the client.
func (s *Server) publish(uri string, snap *session.Snapshot) {
	lintDiags, err := s.linter.Run(snap.Tree, snap.Lint, snap.View)
	if err != nil {
		s.logger.WithError(err).WithField("uri", uri).Warn("lint failed")
		return
	}
	diags := make([]protocol.Diagnostic, 0, len(lintDiags))
	for _, d := range lintDiags {
		diags = append(diags, convertLintDiagnostic(snap.Tree, d))
	}
	s.logger.WithField("uri", uri).WithField("diagnostics", len(diags)).Debug("publish")
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic.
func convertLintDiagnostic(tree *syntax.Tree, d lint.Diagnostic) protocol.Diagnostic {
	sev := mapLintSeverity(d.Severity)
	out := protocol.Diagnostic{
		Range:    spanToRange(tree, d.Span),
		Severity: &sev,
		Source:   strPtr(diagnosticSource),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  d.Message,
	}
	for _, n := range d.Notes {
		out.Message += "\nnote: " + n
	}
	return out
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func strPtr(s string) *string {
	return &s
}
