// Copyright © 2024 The ELPS authors

// Package session owns the analysis state of one editable NetLogo document.
//
// A Session accepts edits, debounces them and rebuilds its preprocess table
// and lint context from scratch. Each rebuild produces a new immutable
// Snapshot that replaces the previous one atomically, so readers never see
// a half built context. Sessions may be linked so that a document sees the
// breeds, procedures and globals of another; linked sessions are only ever
// read through their snapshots and combined by an explicit merge.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luthersystems/nlint/analysis"
	"github.com/luthersystems/nlint/lint"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultDebounce is how long a session waits after the last edit before
// it analyzes the document.
const DefaultDebounce = 300 * time.Millisecond

const tracerName = "github.com/luthersystems/nlint/session"

// Snapshot is the result of one analysis. It is never modified after it is
// published.
type Snapshot struct {
	// Version counts the edits the snapshot reflects.
	Version int
	Source  string
	Tree    *syntax.Tree
	// Preprocess is the document's own table.
	Preprocess *analysis.PreprocessContext
	// View is Preprocess merged with the tables of linked sessions. It is the
	// table the lint context was built from.
	View *analysis.PreprocessContext
	Lint *analysis.LintContext

	// seq orders snapshots by the run that built them.
	seq uint64
}

// Session tracks one document.
type Session struct {
	reg      *prims.Registry
	scope    string
	logger   *logrus.Logger
	tracer   trace.Tracer
	debounce time.Duration
	analyzed func(*Snapshot)

	mu      sync.Mutex
	source  string
	version int
	dirty   bool
	timer   *time.Timer
	links   []*Session
	widgets []string

	// runMu serializes analyses so a debounced run and a forced one never
	// race to publish.
	runMu sync.Mutex
	runs  uint64
	snap  atomic.Pointer[Snapshot]

	// deliverMu serializes the hook. delivered is the seq of the last
	// snapshot handed to it.
	deliverMu sync.Mutex
	delivered uint64
}

// Option configures a Session.
type Option func(*Session)

// WithScope sets the scope identifier the session's contexts carry. Scopes
// decide which document wins when merged views collide.
func WithScope(scope string) Option {
	return func(s *Session) { s.scope = scope }
}

// WithLogger sets the logger analysis events are written to.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithDebounce sets the delay between the last edit and the analysis it
// schedules.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = d }
}

// WithAnalyzedHook registers fn to be called with every snapshot the
// session publishes. fn runs on the goroutine that ran the analysis, which
// for debounced edits is a timer goroutine.
func WithAnalyzedHook(fn func(*Snapshot)) Option {
	return func(s *Session) { s.analyzed = fn }
}

// WithTracerProvider sets the provider analysis spans are recorded with.
// Without it the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Session) { s.tracer = tp.Tracer(tracerName) }
}

// New returns an empty session resolving primitives through reg. A nil reg
// means the bundled catalog.
func New(reg *prims.Registry, opts ...Option) *Session {
	if reg == nil {
		reg = prims.MustDefaultRegistry()
	}
	s := &Session{
		reg:      reg,
		scope:    "untitled",
		debounce: DefaultDebounce,
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = logrus.New()
	}
	if s.tracer == nil {
		s.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	pre := analysis.NewPreprocessContext(s.scope)
	pre.MarkClean()
	lc := analysis.NewLintContext(reg, s.scope)
	lc.MarkClean()
	s.snap.Store(&Snapshot{Preprocess: pre, View: pre, Lint: lc})
	return s
}

// Scope returns the session's scope identifier.
func (s *Session) Scope() string {
	return s.scope
}

// Registry returns the registry the session resolves primitives with.
func (s *Session) Registry() *prims.Registry {
	return s.reg
}

// Source returns the latest text given to Update, analyzed or not.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Update replaces the document text and schedules an analysis once edits
// stop for the debounce interval.
func (s *Session) Update(source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
	s.version++
	s.markDirty()
}

// Invalidate schedules an analysis without changing the text. Hosts call it
// when a linked session or the widget globals changed.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markDirty()
}

// markDirty must be called with mu held.
func (s *Session) markDirty() {
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithField("scope", s.scope).Errorf("analysis panic: %v", r)
			}
		}()
		s.analyze(context.Background())
	})
}

// Dirty reports whether edits have been made since the last analysis.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// SetWidgetGlobals records the names interface widgets define. They take
// effect at the next analysis.
func (s *Session) SetWidgetGlobals(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgets = append([]string(nil), names...)
	s.markDirty()
}

// Link makes the declarations of child visible to s. Linking a session to
// itself or linking the same session twice does nothing.
func (s *Session) Link(child *Session) {
	if child == nil || child == s {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l == child {
			return
		}
	}
	s.links = append(s.links, child)
	s.markDirty()
}

// Unlink removes child from the sessions s reads.
func (s *Session) Unlink(child *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.links {
		if l == child {
			s.links = append(s.links[:i], s.links[i+1:]...)
			s.markDirty()
			return
		}
	}
}

// Snapshot returns the latest published analysis. It never blocks and is
// never nil; before the first analysis its tree is nil.
func (s *Session) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Analyze analyzes the document now if it has changed and returns the
// latest snapshot.
func (s *Session) Analyze(ctx context.Context) *Snapshot {
	s.analyze(ctx)
	return s.Snapshot()
}

// ForceAnalysis cancels the pending debounce and analyzes until the session
// is clean. Only this session's own analysis is waited for; linked sessions
// contribute whatever snapshot they have published.
func (s *Session) ForceAnalysis(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	for {
		if err := ctx.Err(); err != nil {
			// Leave the pending edit to the debounce timer.
			s.mu.Lock()
			if s.dirty {
				s.markDirty()
			}
			s.mu.Unlock()
			return nil, err
		}
		s.analyze(ctx)
		if !s.Dirty() {
			return s.Snapshot(), nil
		}
	}
}

// Diagnostics brings the session up to date and lints it with linter.
func (s *Session) Diagnostics(ctx context.Context, linter *lint.Linter) ([]lint.Diagnostic, error) {
	snap, err := s.ForceAnalysis(ctx)
	if err != nil {
		return nil, err
	}
	_, span := s.tracer.Start(ctx, "lint")
	defer span.End()
	diags, err := linter.Run(snap.Tree, snap.Lint, snap.View)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("scope", s.scope),
		attribute.Int("diagnostics", len(diags)),
	)
	s.logger.WithFields(logrus.Fields{
		"scope":       s.scope,
		"phase":       "lint",
		"version":     snap.Version,
		"diagnostics": len(diags),
	}).Debug("lint complete")
	return diags, nil
}

// MergedView combines the snapshots of s and every linked session. The
// result does not depend on the order sessions were linked in.
func (s *Session) MergedView() (*analysis.PreprocessContext, *analysis.LintContext) {
	snaps := []*Snapshot{s.Snapshot()}
	for _, l := range s.linked() {
		snaps = append(snaps, l.Snapshot())
	}
	pres := make([]*analysis.PreprocessContext, 0, len(snaps))
	lcs := make([]*analysis.LintContext, 0, len(snaps))
	for _, snap := range snaps {
		pres = append(pres, snap.Preprocess)
		lcs = append(lcs, snap.Lint)
	}
	return analysis.MergePreprocess(s.scope, pres...), analysis.MergeLint(s.scope, lcs...)
}

// Links returns the sessions s reads, in the order they were linked.
func (s *Session) Links() []*Session {
	return s.linked()
}

func (s *Session) linked() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Session(nil), s.links...)
}

// analyze runs an analysis and hands a new snapshot to the hook.
func (s *Session) analyze(ctx context.Context) {
	snap := s.run(ctx)
	if snap != nil && s.analyzed != nil {
		s.deliver(snap)
	}
}

// deliver calls the hook with snap unless a later snapshot already reached
// it. The hook runs outside runMu, so runs may finish out of order.
func (s *Session) deliver(snap *Snapshot) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if snap.seq <= s.delivered {
		s.logger.WithFields(logrus.Fields{
			"scope":   s.scope,
			"version": snap.Version,
		}).Debug("dropping stale snapshot")
		return
	}
	s.delivered = snap.seq
	s.analyzed(snap)
}

// run rebuilds both contexts from the current text if the session is dirty
// and publishes the result. It returns nil when there was nothing to do.
func (s *Session) run(ctx context.Context) *Snapshot {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	s.dirty = false
	s.runs++
	seq := s.runs
	source, version := s.source, s.version
	links := append([]*Session(nil), s.links...)
	widgets := append([]string(nil), s.widgets...)
	s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "analyze")
	defer span.End()
	span.SetAttributes(attribute.String("scope", s.scope), attribute.Int("version", version))

	var linked []*analysis.PreprocessContext
	for _, l := range links {
		linked = append(linked, l.Snapshot().Preprocess)
	}

	_, pspan := s.tracer.Start(ctx, "preprocess")
	pre := analysis.NewPreprocessContext(s.scope)
	tree := analysis.Parse(s.reg, pre, s.scope, source, linked...)
	view := pre
	if len(linked) > 0 {
		view = analysis.MergePreprocess(s.scope, append([]*analysis.PreprocessContext{pre}, linked...)...)
	}
	pspan.SetAttributes(
		attribute.Int("breeds", len(pre.Breeds)),
		attribute.Int("procedures", len(pre.Procedures)),
	)
	pspan.End()

	_, lspan := s.tracer.Start(ctx, "lint-context")
	lc := analysis.NewLintContext(s.reg, s.scope)
	lc.SetWidgetGlobals(widgets)
	lc.ParseState(tree, view)
	lspan.SetAttributes(
		attribute.Int("blocks", len(lc.Blocks)),
		attribute.Int("context_errors", len(lc.ContextErrors)),
	)
	lspan.End()

	snap := &Snapshot{
		Version:    version,
		Source:     source,
		Tree:       tree,
		Preprocess: pre,
		View:       view,
		Lint:       lc,
		seq:        seq,
	}
	s.snap.Store(snap)
	s.logger.WithFields(logrus.Fields{
		"scope":      s.scope,
		"phase":      "analyze",
		"version":    version,
		"links":      len(links),
		"breeds":     len(pre.Breeds),
		"procedures": len(pre.Procedures),
	}).Debug("analysis complete")
	return snap
}
