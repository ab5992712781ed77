// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/luthersystems/nlint/analysis"
	"github.com/luthersystems/nlint/session"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu      sync.Mutex
	URI     string
	Version int32

	session *session.Session
}

// Snapshot returns the latest analysis of the document.
func (d *Document) Snapshot() *session.Snapshot {
	return d.session.Snapshot()
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Put adds or replaces a document.
func (s *DocumentStore) Put(doc *Document) {
	s.mu.Lock()
	s.docs[doc.URI] = doc
	s.mu.Unlock()
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns every open document ordered by URI.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// sessionFor returns the session analyzing path, creating it if needed.
func (s *Server) sessionFor(path string) *session.Session {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if sess, ok := s.sessions[path]; ok {
		return sess
	}
	uri := pathToURI(path)
	sess := session.New(s.registry,
		session.WithScope(path),
		session.WithLogger(s.logger),
		session.WithDebounce(s.debounce),
		session.WithAnalyzedHook(func(snap *session.Snapshot) { s.analyzed(uri, snap) }),
	)
	s.sessions[path] = sess
	return sess
}

// includeSession returns the session of a file named by __includes. Files
// not open in the editor are read from disk once.
func (s *Server) includeSession(path string) *session.Session {
	s.sessionsMu.Lock()
	sess, ok := s.sessions[path]
	s.sessionsMu.Unlock()
	if ok {
		return sess
	}
	src, err := os.ReadFile(path) //nolint:gosec // reads files the model includes
	if err != nil {
		s.logger.WithError(err).WithField("path", path).Debug("include not readable")
		return nil
	}
	sess = s.sessionFor(path)
	sess.Update(string(src))
	if _, err := sess.ForceAnalysis(context.Background()); err != nil {
		return nil
	}
	return sess
}

// syncIncludes links the sessions of the files snap's tree includes and
// unlinks those it no longer does.
func (s *Server) syncIncludes(sess *session.Session, snap *session.Snapshot) {
	if snap.Tree == nil {
		return
	}
	want := make(map[*session.Session]bool)
	for _, path := range analysis.Includes(snap.Tree, filepath.Dir(sess.Scope())) {
		if inc := s.includeSession(path); inc != nil && inc != sess {
			want[inc] = true
			sess.Link(inc)
		}
	}
	for _, l := range sess.Links() {
		if !want[l] {
			sess.Unlink(l)
		}
	}
}

// dependents returns the sessions that link sess.
func (s *Server) dependents(sess *session.Session) []*session.Session {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	var out []*session.Session
	for _, other := range s.sessions {
		for _, l := range other.Links() {
			if l == sess {
				out = append(out, other)
				break
			}
		}
	}
	return out
}
