// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"github.com/luthersystems/nlint/syntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentFoldingRange handles the textDocument/foldingRange request.
// It returns folding ranges for multi-line procedures, code blocks and
// consecutive comment blocks.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	snap := doc.Snapshot()
	if snap.Tree == nil {
		return nil, nil
	}
	tree := snap.Tree

	var ranges []protocol.FoldingRange
	region := string(protocol.FoldingRangeKindRegion)
	fold := func(span syntax.Span, kind string) {
		start := tree.Position(span.Start).Line - 1
		end := tree.Position(span.End).Line - 1
		if end > start {
			k := kind
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: safeUint(start),
				EndLine:   safeUint(end),
				Kind:      &k,
			})
		}
	}
	for _, proc := range tree.Procedures() {
		fold(proc.Span, region)
	}
	for _, b := range snap.Lint.Blocks {
		fold(b.Span, region)
	}
	ranges = append(ranges, commentFoldingRanges(snap.Source)...)
	return ranges, nil
}

// commentFoldingRanges folds runs of two or more lines that hold only a
// comment.
func commentFoldingRanges(content string) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	kind := string(protocol.FoldingRangeKindComment)
	start := -1
	lines := strings.Split(content, "\n")
	flush := func(end int) {
		if start >= 0 && end > start {
			k := kind
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: safeUint(start),
				EndLine:   safeUint(end),
				Kind:      &k,
			})
		}
		start = -1
	}
	for i, ln := range lines {
		if strings.HasPrefix(strings.TrimSpace(ln), ";") {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i - 1)
	}
	flush(len(lines) - 1)
	return ranges
}
