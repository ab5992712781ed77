// Copyright © 2024 The ELPS authors

package analysis

import (
	"sort"
)

// Linked documents never share context objects. A merged view is built by
// combining their contexts: maps are united by name and, when two documents
// define the same name, the entry from the greatest scope identifier wins.
// Inputs are ordered by scope first, so the argument order does not matter.

func byScope[T any](in []T, scope func(T) string) []T {
	out := make([]T, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return scope(out[i]) < scope(out[j]) })
	return out
}

// MergePreprocess combines preprocess tables into a new clean table with
// the given scope.
func MergePreprocess(scope string, ctxs ...*PreprocessContext) *PreprocessContext {
	m := NewPreprocessContext(scope)
	for _, p := range byScope(ctxs, func(p *PreprocessContext) string { return p.Scope }) {
		for k, v := range p.Breeds {
			if v.Count == 0 {
				if _, ok := m.Breeds[k]; ok {
					continue
				}
			}
			m.Breeds[k] = v
		}
		for k, v := range p.Singulars {
			if _, ok := m.Singulars[k]; !ok || v > 0 {
				m.Singulars[k] = v
			}
		}
		for k, v := range p.Variables {
			m.Variables[k] = v
		}
		for k, v := range p.Owned {
			m.Owned[k] = append([]string(nil), v...)
		}
		for k, v := range p.Procedures {
			m.Procedures[k] = v
		}
		for k, v := range p.Globals {
			m.Globals[k] = v
		}
	}
	m.MarkClean()
	return m
}

// MergeLint combines lint contexts into a new clean context with the given
// scope. Arena indexes are rebased so every procedure and block of the
// result refers into the merged arenas. Context errors of every input are
// kept.
func MergeLint(scope string, ctxs ...*LintContext) *LintContext {
	var m *LintContext
	var pres []*PreprocessContext
	for _, lc := range byScope(ctxs, func(lc *LintContext) string { return lc.Scope }) {
		if m == nil {
			m = NewLintContext(lc.reg, scope)
		}
		blockBase, anonBase := len(m.Blocks), len(m.Anonymous)
		for _, b := range lc.Blocks {
			b.Blocks = rebase(b.Blocks, blockBase)
			b.Anonymous = rebase(b.Anonymous, anonBase)
			m.Blocks = append(m.Blocks, b)
		}
		for _, a := range lc.Anonymous {
			m.Anonymous = append(m.Anonymous, rebaseProcedure(a, blockBase, anonBase))
		}
		for k, v := range lc.Extensions {
			m.Extensions[k] = v
		}
		for k, v := range lc.Globals {
			m.Globals[k] = v
		}
		for k, v := range lc.WidgetGlobals {
			m.WidgetGlobals[k] = v
		}
		for k, b := range lc.Breeds {
			if b.Scope == "" {
				if _, ok := m.Breeds[k]; ok {
					continue
				}
			}
			cp := *b
			cp.Variables = append([]string(nil), b.Variables...)
			m.Breeds[k] = &cp
		}
		for k, p := range lc.Procedures {
			cp := rebaseProcedure(*p, blockBase, anonBase)
			m.Procedures[k] = &cp
		}
		m.ContextErrors = append(m.ContextErrors, lc.ContextErrors...)
		if lc.pre != nil {
			pres = append(pres, lc.pre)
		}
	}
	if m == nil {
		m = NewLintContext(nil, scope)
	}
	m.pre = MergePreprocess(scope, pres...)
	m.MarkClean()
	return m
}

func rebase(idx []int, base int) []int {
	if idx == nil {
		return nil
	}
	out := make([]int, len(idx))
	for i, v := range idx {
		out[i] = v + base
	}
	return out
}

func rebaseProcedure(p Procedure, blockBase, anonBase int) Procedure {
	p.Blocks = rebase(p.Blocks, blockBase)
	p.Anonymous = rebase(p.Anonymous, anonBase)
	return p
}
