// Copyright © 2024 The ELPS authors

// Package diagnostic provides Rust-style annotated rendering of lint
// diagnostics for terminal output.
package diagnostic

import (
	"github.com/luthersystems/nlint/lint"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// Diagnostic represents a single error, warning, or info message with
// optional source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	// Code names the check that produced the diagnostic, e.g. "breed".
	Code    string
	Message string
	Spans   []Span
	Notes   []string // "= note:" lines
	Help    []string // "= help:" lines, one per offered fix
}

// FromLint converts a lint diagnostic for rendering.
func FromLint(d lint.Diagnostic) Diagnostic {
	out := Diagnostic{
		Code:    d.Analyzer,
		Message: d.Message,
		Notes:   append([]string(nil), d.Notes...),
	}
	switch d.Severity {
	case lint.SeverityError:
		out.Severity = SeverityError
	case lint.SeverityInfo:
		out.Severity = SeverityInfo
	default:
		out.Severity = SeverityWarning
	}
	if d.Pos.Line > 0 {
		span := Span{File: d.Pos.File, Line: d.Pos.Line, Col: d.Pos.Col}
		// Multi-line spans underline the first token only.
		if d.End.Line == d.Pos.Line && d.End.Col > d.Pos.Col {
			span.EndCol = d.End.Col - 1
		}
		out.Spans = []Span{span}
	}
	for _, f := range d.Fixes {
		if f.Kind == lint.FixExplain {
			continue
		}
		out.Help = append(out.Help, f.Title)
	}
	return out
}

// FromLintAll converts every diagnostic in diags.
func FromLintAll(diags []lint.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, FromLint(d))
	}
	return out
}
