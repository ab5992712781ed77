// Copyright © 2024 The ELPS authors

// Package prims is the catalog of built-in and extension primitives.
//
// A Registry is populated once, typically by NewDefaultRegistry, and passed
// by reference into every analysis. Lookups are safe to call concurrently;
// registration is not and belongs to the load phase.
package prims

import (
	"sort"
	"strings"

	"github.com/luthersystems/nlint/agentctx"
)

// Registry holds primitives keyed by extension and name, built-in agent
// variables and constants.
type Registry struct {
	prims     map[string]map[string]*Primitive
	vars      map[string]*Variable
	constants map[string]Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		prims:     map[string]map[string]*Primitive{"": {}},
		vars:      make(map[string]*Variable),
		constants: make(map[string]Type),
	}
}

// Register inserts or overwrites p under the extension namespace ext.
// Structurally invalid primitives are ignored.
func (r *Registry) Register(ext string, p *Primitive) {
	if !p.valid() {
		return
	}
	ext = strings.ToLower(ext)
	p.Extension = ext
	p.Name = strings.ToLower(p.Name)
	p.Canonical = strings.ToLower(p.Canonical)
	m, ok := r.prims[ext]
	if !ok {
		m = make(map[string]*Primitive)
		r.prims[ext] = m
	}
	m[p.Name] = p
}

// RegisterVariable adds a built-in agent or observer variable.
func (r *Registry) RegisterVariable(v *Variable) {
	if v == nil || v.Name == "" || v.Context == agentctx.None {
		return
	}
	v.Name = strings.ToLower(v.Name)
	r.vars[v.Name] = v
}

// RegisterConstant adds a built-in constant such as red or pi.
func (r *Registry) RegisterConstant(name string, t Type) {
	if name == "" {
		return
	}
	r.constants[strings.ToLower(name)] = t
}

// GetPrimitive looks up name in the extension namespace ext. The core
// language is ext "".
func (r *Registry) GetPrimitive(ext, name string) (*Primitive, bool) {
	m, ok := r.prims[strings.ToLower(ext)]
	if !ok {
		return nil, false
	}
	p, ok := m[strings.ToLower(name)]
	return p, ok
}

// GetNamedPrimitive looks up a primitive by the name it is written with,
// e.g. "fd" or "table:make".
func (r *Registry) GetNamedPrimitive(full string) (*Primitive, bool) {
	ext, name := SplitName(full)
	return r.GetPrimitive(ext, name)
}

// SplitName separates an extension-qualified name. Names without a colon
// belong to the core language.
func SplitName(full string) (ext, name string) {
	i := strings.IndexByte(full, ':')
	if i <= 0 || i == len(full)-1 {
		return "", full
	}
	return full[:i], full[i+1:]
}

// HasExtension reports whether any primitive is registered under ext.
func (r *Registry) HasExtension(ext string) bool {
	m, ok := r.prims[strings.ToLower(ext)]
	return ok && len(m) > 0
}

// Extensions returns the sorted names of registered extensions.
func (r *Registry) Extensions() []string {
	var exts []string
	for ext, m := range r.prims {
		if ext != "" && len(m) > 0 {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Primitives returns the primitives of ext sorted by name.
func (r *Registry) Primitives(ext string) []*Primitive {
	m := r.prims[strings.ToLower(ext)]
	ps := make([]*Primitive, 0, len(m))
	for _, p := range m {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	return ps
}

// GetVariable looks up a built-in agent or observer variable.
func (r *Registry) GetVariable(name string) (*Variable, bool) {
	v, ok := r.vars[strings.ToLower(name)]
	return v, ok
}

// Variables returns every built-in variable sorted by name.
func (r *Registry) Variables() []*Variable {
	vs := make([]*Variable, 0, len(r.vars))
	for _, v := range r.vars {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].Name < vs[j].Name })
	return vs
}

// IsConstant reports whether name is a built-in constant.
func (r *Registry) IsConstant(name string) bool {
	_, ok := r.constants[strings.ToLower(name)]
	return ok
}

// Constants returns the sorted constant names.
func (r *Registry) Constants() []string {
	cs := make([]string, 0, len(r.constants))
	for c := range r.constants {
		cs = append(cs, c)
	}
	sort.Strings(cs)
	return cs
}

// GetCompletions returns the sorted, de-duplicated names of every core
// primitive plus the primitives of the given extensions, the latter written
// as "ext:name". Unknown extensions contribute nothing.
func (r *Registry) GetCompletions(extensions []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for name := range r.prims[""] {
		add(name)
	}
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if ext == "" {
			continue
		}
		for _, p := range r.prims[ext] {
			add(p.FullName())
		}
	}
	sort.Strings(out)
	return out
}

// Describe renders a one-line summary of p used by hover text and the prims
// command.
func Describe(p *Primitive) string {
	var b strings.Builder
	b.WriteString(Usage(p))
	if IsReporter(p) {
		b.WriteString(" => ")
		b.WriteString(p.Return.String())
	}
	if p.Context != agentctx.All {
		b.WriteString(" (")
		b.WriteString(p.Context.Describe())
		b.WriteString(" only)")
	}
	return b.String()
}
