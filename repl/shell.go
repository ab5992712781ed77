// Copyright © 2024 The ELPS authors

package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/luthersystems/nlint/diagnostic"
	"github.com/luthersystems/nlint/lint"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/session"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/sirupsen/logrus"
)

// shellScope names the document a shell builds.
const shellScope = "shell"

// commandProcedure wraps command lines so they are checked in observer
// context against the document without becoming part of it.
const commandProcedure = "shell-command"

var declarationKeywords = map[string]bool{
	"breed":                 true,
	"directed-link-breed":   true,
	"undirected-link-breed": true,
	"globals":               true,
	"extensions":            true,
	"__includes":            true,
}

// Shell accumulates a NetLogo document from lines of input. Declarations
// and procedures are kept; other lines are checked as observer commands.
type Shell struct {
	reg      *prims.Registry
	sess     *session.Session
	linter   *lint.Linter
	color    diagnostic.ColorMode
	out      io.Writer
	doc      string
	pending  []string
	readFile func(string) ([]byte, error)
}

// NewShell creates a shell writing its output to out.
func NewShell(out io.Writer, opts ...Option) *Shell {
	cfg := newConfig(opts...)
	reg := cfg.registry
	if reg == nil {
		reg = prims.MustDefaultRegistry()
	}
	logger := cfg.logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Shell{
		reg:      reg,
		sess:     session.New(reg, session.WithScope(shellScope), session.WithLogger(logger)),
		linter:   &lint.Linter{Analyzers: lint.DefaultAnalyzers(), Registry: reg},
		color:    cfg.color,
		out:      out,
		readFile: os.ReadFile,
	}
}

// Document returns the declarations and procedures entered so far.
func (sh *Shell) Document() string {
	return sh.doc
}

// Pending reports whether a procedure is waiting for its end.
func (sh *Shell) Pending() bool {
	return len(sh.pending) > 0
}

// Eval handles one line of input. It returns true when the shell should
// exit.
func (sh *Shell) Eval(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if sh.Pending() {
		sh.pending = append(sh.pending, line)
		if endsProcedure(trimmed) {
			sh.flush(ctx)
		}
		return false
	}
	if trimmed == "" || strings.HasPrefix(trimmed, ";") {
		return false
	}
	if strings.HasPrefix(trimmed, ":") {
		return sh.command(ctx, trimmed)
	}
	first := strings.ToLower(strings.Fields(trimmed)[0])
	switch {
	case first == "to" || first == "to-report":
		sh.pending = []string{line}
		if endsProcedure(trimmed) {
			sh.flush(ctx)
		}
	case declarationKeywords[first] || strings.HasSuffix(first, "-own"):
		sh.commit(ctx, line)
	default:
		sh.check(ctx, line)
	}
	return false
}

// Finish commits an unterminated procedure so its problems are reported.
func (sh *Shell) Finish(ctx context.Context) {
	if sh.Pending() {
		sh.flush(ctx)
	}
}

// Reset discards the document and any pending procedure.
func (sh *Shell) Reset() {
	sh.doc = ""
	sh.pending = nil
	sh.sess.Update("")
}

// Cancel drops a pending procedure.
func (sh *Shell) Cancel() {
	sh.pending = nil
}

func (sh *Shell) flush(ctx context.Context) {
	unit := strings.Join(sh.pending, "\n")
	sh.pending = nil
	if sh.commit(ctx, unit) {
		if name := procedureName(unit); name != "" {
			sh.printf("defined %s\n", name)
		}
	}
}

// commit appends unit to the document and reports the problems found in
// it. It returns whether unit is free of errors.
func (sh *Shell) commit(ctx context.Context, unit string) bool {
	start := 0
	next := unit
	if sh.doc != "" {
		start = len(sh.doc) + 1
		next = sh.doc + "\n" + unit
	}
	sh.doc = next
	return sh.report(ctx, next, start, len(next))
}

// check lints line as a command without keeping it.
func (sh *Shell) check(ctx context.Context, line string) {
	prefix := sh.doc
	if prefix != "" {
		prefix += "\n"
	}
	prefix += "to " + commandProcedure + "\n"
	source := prefix + line + "\nend"
	if sh.report(ctx, source, len(prefix), len(prefix)+len(line)) {
		sh.printf("ok\n")
	}
	sh.sess.Update(sh.doc)
}

// report analyzes source and prints the diagnostics that start within
// [start, end]. It returns whether none of them is an error.
func (sh *Shell) report(ctx context.Context, source string, start, end int) bool {
	sh.sess.Update(source)
	diags, err := sh.sess.Diagnostics(ctx, sh.linter)
	if err != nil {
		sh.printf("analysis failed: %v\n", err)
		return false
	}
	var shown []lint.Diagnostic
	clean := true
	for _, d := range diags {
		if d.Span.Start < start || d.Span.Start > end {
			continue
		}
		shown = append(shown, d)
		if d.Severity == lint.SeverityError {
			clean = false
		}
	}
	renderDiagnostics(sh.out, source, shown, sh.color)
	return clean
}

func (sh *Shell) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":show":
		if sh.doc != "" {
			sh.printf("%s\n", sh.doc)
		}
	case ":clear":
		sh.Reset()
	case ":check":
		sh.report(ctx, sh.doc, 0, len(sh.doc))
	case ":load":
		if len(fields) != 2 {
			sh.printf("usage: :load FILE\n")
			return false
		}
		src, err := sh.readFile(fields[1])
		if err != nil {
			sh.printf("%v\n", err)
			return false
		}
		if sh.commit(ctx, strings.TrimRight(string(src), "\n")) {
			sh.printf("loaded %s\n", fields[1])
		}
	case ":help":
		if len(fields) == 1 {
			sh.printf("%s", helpText)
			return false
		}
		sh.describe(strings.ToLower(fields[1]))
	default:
		sh.printf("unknown command %s; try :help\n", fields[0])
	}
	return false
}

const helpText = `:help WORD   describe a primitive or procedure
:show        print the document
:check       report every problem in the document
:load FILE   append a file to the document
:clear       start a new document
:quit        leave the shell
`

// describe prints what word names.
func (sh *Shell) describe(word string) {
	if p, ok := sh.reg.GetNamedPrimitive(word); ok {
		sh.printf("%s\n", prims.Describe(p))
		if p.Doc != "" {
			sh.printf("%s\n", indent.String(wordwrap.String(p.Doc, 72), 2))
		}
		return
	}
	if lc := sh.sess.Snapshot().Lint; lc != nil {
		if p, ok := lc.Procedures[word]; ok && !p.IsAnonymous {
			keyword := "to"
			if p.Reporter {
				keyword = "to-report"
			}
			header := keyword + " " + p.Name
			if len(p.Arguments) > 0 {
				header += " [" + strings.Join(p.Arguments, " ") + "]"
			}
			sh.printf("%s (%s)\n", header, p.Context.Describe())
			return
		}
	}
	sh.printf("nothing named %s has been defined\n", word)
}

// Words lists the names completion offers: primitives of the declared
// extensions, the shell commands and everything the document declares.
func (sh *Shell) Words() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names ...string) {
		for _, n := range names {
			if n != "" && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	lc := sh.sess.Snapshot().Lint
	var exts []string
	if lc != nil {
		for ext := range lc.Extensions {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
	}
	add(sh.reg.GetCompletions(exts)...)
	add(sh.reg.Constants()...)
	for _, v := range sh.reg.Variables() {
		add(v.Name)
	}
	if lc != nil {
		for name, p := range lc.Procedures {
			if !p.IsAnonymous {
				add(name)
			}
		}
		for name := range lc.Globals {
			add(name)
		}
		add(lc.PluralNames()...)
		add(lc.SingularNames()...)
		for _, b := range lc.Breeds {
			add(b.Variables...)
		}
	}
	add(":help", ":show", ":check", ":load", ":clear", ":quit")
	sort.Strings(out)
	return out
}

func (sh *Shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...) //nolint:errcheck // best-effort REPL output
}

// endsProcedure reports whether the last word of line, ignoring comments,
// is end.
func endsProcedure(line string) bool {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	return len(fields) > 0 && strings.EqualFold(fields[len(fields)-1], "end")
}

func procedureName(unit string) string {
	fields := strings.Fields(unit)
	if len(fields) < 2 {
		return ""
	}
	return strings.ToLower(fields[1])
}
