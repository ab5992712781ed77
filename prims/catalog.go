// Copyright © 2024 The ELPS authors

package prims

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/luthersystems/nlint/agentctx"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

// catalogFile is the on-disk form of a primitive catalog.
type catalogFile struct {
	Extension  string             `yaml:"extension"`
	Primitives []catalogPrimitive `yaml:"primitives"`
	Variables  []catalogVariable  `yaml:"variables"`
	Constants  []string           `yaml:"constants"`
}

type catalogPrimitive struct {
	Name    string   `yaml:"name"`
	Alias   []string `yaml:"alias"`
	Ctx     string   `yaml:"ctx"`
	Ret     string   `yaml:"ret"`
	Left    string   `yaml:"left"`
	Right   []string `yaml:"right"`
	Prec    *int     `yaml:"prec"`
	Block   string   `yaml:"block"`
	Concise bool     `yaml:"concise"`
	RAssoc  bool     `yaml:"rassoc"`
	Default int      `yaml:"default"`
	Min     *int     `yaml:"min"`
	Doc     string   `yaml:"doc"`
}

type catalogVariable struct {
	Name     string `yaml:"name"`
	Ctx      string `yaml:"ctx"`
	Type     string `yaml:"type"`
	Owner    string `yaml:"owner"`
	ReadOnly bool   `yaml:"readonly"`
}

// NewDefaultRegistry returns a registry holding the core language and the
// bundled extension catalogs.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	names, err := fs.Glob(catalogFS, "catalog/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	for _, name := range names {
		f, err := catalogFS.Open(name)
		if err != nil {
			return nil, err
		}
		err = r.LoadCatalog(f)
		f.Close() //nolint:errcheck
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
	}
	return r, nil
}

// MustDefaultRegistry is NewDefaultRegistry for callers that treat a broken
// embedded catalog as a programming error.
func MustDefaultRegistry() *Registry {
	r, err := NewDefaultRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// LoadCatalog decodes a YAML catalog and registers its contents. Entries
// whose type notation cannot be read are reported as an error; entries that
// decode but are structurally invalid are skipped by Register.
func (r *Registry) LoadCatalog(rd io.Reader) error {
	var cat catalogFile
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode catalog: %w", err)
	}
	for _, cp := range cat.Primitives {
		p, err := cp.primitive()
		if err != nil {
			return fmt.Errorf("primitive %q: %w", cp.Name, err)
		}
		r.Register(cat.Extension, p)
		for _, alias := range cp.Alias {
			alt := *p
			alt.Name = alias
			alt.Canonical = p.Name
			r.Register(cat.Extension, &alt)
		}
	}
	for _, cv := range cat.Variables {
		t, err := ParseType(cv.Type)
		if err != nil {
			return fmt.Errorf("variable %q: %w", cv.Name, err)
		}
		owner := cv.Owner
		if owner == "" {
			owner = ownerOf(agentctx.Parse(cv.Ctx))
		}
		r.RegisterVariable(&Variable{
			Name:     cv.Name,
			Context:  agentctx.Parse(cv.Ctx),
			Type:     t,
			Owner:    owner,
			ReadOnly: cv.ReadOnly,
		})
	}
	for _, c := range cat.Constants {
		r.RegisterConstant(c, Wildcard)
	}
	return nil
}

func ownerOf(c agentctx.Context) string {
	switch {
	case c.Has(agentctx.Turtle):
		return "turtles"
	case c.Has(agentctx.Patch):
		return "patches"
	case c.Has(agentctx.Link):
		return "links"
	default:
		return "observer"
	}
}

func (cp catalogPrimitive) primitive() (*Primitive, error) {
	p := &Primitive{
		Name:         cp.Name,
		Context:      agentctx.All,
		DefaultArgs:  cp.Default,
		MinimumArgs:  -1,
		CanBeConcise: cp.Concise,
		Doc:          strings.TrimSpace(cp.Doc),

		RightAssociative: cp.RAssoc,
	}
	if cp.Ctx != "" {
		p.Context = agentctx.Parse(cp.Ctx)
	}
	if cp.Min != nil {
		p.MinimumArgs = *cp.Min
	}
	var err error
	if p.Return, err = parseReturn(cp.Ret); err != nil {
		return nil, err
	}
	if cp.Left != "" {
		left, err := parseArgument(cp.Left)
		if err != nil {
			return nil, err
		}
		p.Left = &left
	}
	for _, spec := range cp.Right {
		arg, err := parseArgument(spec)
		if err != nil {
			return nil, err
		}
		p.Right = append(p.Right, arg)
	}
	switch {
	case cp.Prec != nil:
		p.Precedence = *cp.Prec
	case p.Return == Unit:
		p.Precedence = CommandPrecedence
	default:
		p.Precedence = NormalPrecedence
	}
	// A block either runs in a context chosen by the primitive's agent
	// argument ("?"), in a fixed context, or in the caller's context.
	if p.HasBlock() {
		switch cp.Block {
		case "?":
			p.IntroducesContext = true
		case "":
			p.InheritParentContext = true
		default:
			p.BlockContext = agentctx.Parse(cp.Block)
		}
	}
	return p, nil
}

func parseReturn(s string) (Type, error) {
	var t Type
	for _, name := range strings.Split(s, "|") {
		u, err := ParseType(name)
		if err != nil {
			return Unit, err
		}
		t |= u
	}
	return t, nil
}
