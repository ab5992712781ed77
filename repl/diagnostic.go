// Copyright © 2024 The ELPS authors

package repl

import (
	"io"

	"github.com/luthersystems/nlint/diagnostic"
	"github.com/luthersystems/nlint/lint"
)

// renderDiagnostics renders diags in the annotated style of the lint
// command. The source is the analyzed text, so spans show the line that
// was entered.
func renderDiagnostics(w io.Writer, source string, diags []lint.Diagnostic, mode diagnostic.ColorMode) {
	if len(diags) == 0 {
		return
	}
	r := &diagnostic.Renderer{
		Color:        mode,
		SourceReader: diagnostic.InMemory(map[string]string{shellScope: source}),
	}
	for _, ld := range diags {
		d := diagnostic.FromLint(ld)
		d.Notes = append(d.Notes, "use :help word to describe a primitive")
		_ = r.Render(w, d)
	}
}
