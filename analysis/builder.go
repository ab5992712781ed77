// Copyright © 2024 The ELPS authors

package analysis

import (
	"strings"

	"github.com/luthersystems/nlint/agentctx"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
)

const (
	unbuilt = iota
	building
	built
)

// builder walks one tree into a LintContext.
type builder struct {
	lc     *LintContext
	tree   *syntax.Tree
	nodes  map[string]*syntax.Node
	status map[string]int
}

// frame is the state of the statement sequence being walked.
type frame struct {
	// ctx is the context accumulated by the statements so far.
	ctx  agentctx.Context
	proc string
	args []string
	own  owner
}

// owner is where locals, blocks and anonymous procedures found in a frame
// are recorded: the innermost block or anonymous procedure, else the
// procedure itself.
type owner struct {
	proc  *Procedure
	block int
	anon  int
}

func newBuilder(lc *LintContext, tree *syntax.Tree) *builder {
	return &builder{
		lc:     lc,
		tree:   tree,
		nodes:  make(map[string]*syntax.Node),
		status: make(map[string]int),
	}
}

func (b *builder) build() {
	b.declarations()
	for _, n := range b.tree.Procedures() {
		if n.Name == "" {
			continue
		}
		if _, dup := b.lc.Procedures[n.Name]; dup {
			continue
		}
		proc := &Procedure{
			Name:     n.Name,
			Span:     n.Span,
			NameSpan: n.NameSpan,
			Reporter: n.Reporter,
			Context:  agentctx.All,
			Scope:    b.lc.Scope,
		}
		for _, p := range n.Named(syntax.RoleParam) {
			proc.Arguments = append(proc.Arguments, p.Name)
		}
		b.lc.Procedures[n.Name] = proc
		b.nodes[n.Name] = n
	}
	for _, n := range b.tree.Procedures() {
		if b.nodes[n.Name] == n {
			b.procedureContext(n.Name)
		}
	}
}

func (b *builder) declarations() {
	for _, decl := range b.tree.Declarations(syntax.Extensions) {
		for _, item := range decl.Named(syntax.RoleItem) {
			b.lc.Extensions[item.Name]++
		}
	}
	for _, decl := range b.tree.Declarations(syntax.Globals) {
		for _, item := range decl.Named(syntax.RoleItem) {
			b.lc.Globals[item.Name]++
		}
	}
	for _, decl := range b.tree.Declarations(syntax.BreedDecl) {
		items := decl.Named(syntax.RoleItem)
		if malformed(decl) || len(items) != 2 {
			continue
		}
		br := &Breed{Span: decl.Span, Scope: b.lc.Scope}
		br.Singular, br.Plural, br.Kind = items[1].Name, items[0].Name, breedKind(decl.Name)
		b.lc.Breeds[br.Plural] = br
	}
	b.linkedBreeds()
	for _, decl := range b.tree.Declarations(syntax.BreedsOwn) {
		br, ok := b.lc.Breeds[strings.TrimSuffix(decl.Name, "-own")]
		if !ok || malformed(decl) {
			continue
		}
		for _, item := range decl.Named(syntax.RoleItem) {
			br.Variables = append(br.Variables, item.Name)
		}
	}
}

// linkedBreeds adds the breeds other documents declare. Declarations in
// this document take precedence.
func (b *builder) linkedBreeds() {
	pre := b.lc.pre
	for _, plural := range sortedKeys(pre.Breeds) {
		e := pre.Breeds[plural]
		if e.Count == 0 || e.Scope == b.lc.Scope {
			continue
		}
		if _, ok := b.lc.Breeds[plural]; ok {
			continue
		}
		b.lc.Breeds[plural] = &Breed{
			Breed:     e.Breed,
			Variables: append([]string(nil), pre.Owned[plural]...),
			Scope:     e.Scope,
		}
	}
}

// procedureContext returns the inferred context of a procedure, building
// it on first use. A procedure reached again while it is being built is
// unconstrained, which ends recursion.
func (b *builder) procedureContext(name string) (agentctx.Context, bool) {
	proc, ok := b.lc.Procedures[name]
	if !ok {
		return agentctx.All, false
	}
	switch b.status[name] {
	case building:
		return agentctx.All, true
	case built:
		return proc.Context, true
	}
	b.status[name] = building
	fr := &frame{
		ctx:  agentctx.All,
		proc: name,
		args: proc.Arguments,
		own:  owner{proc: proc, block: -1, anon: -1},
	}
	b.body(b.nodes[name], fr)
	proc.Context = fr.ctx
	b.narrow(proc.Blocks, proc.Anonymous, proc.Context)
	b.status[name] = built
	return proc.Context, true
}

// narrow cuts inheriting blocks and anonymous procedures down to their
// parent's final context.
func (b *builder) narrow(blocks, anons []int, parent agentctx.Context) {
	for _, i := range blocks {
		blk := &b.lc.Blocks[i]
		if !blk.Introduces {
			blk.Context = agentctx.Narrow(blk.Context, parent)
		}
		b.narrow(blk.Blocks, blk.Anonymous, blk.Context)
	}
	for _, i := range anons {
		a := &b.lc.Anonymous[i]
		a.Context = agentctx.Narrow(a.Context, parent)
		b.narrow(a.Blocks, a.Anonymous, a.Context)
	}
}

func (b *builder) body(n *syntax.Node, fr *frame) {
	for _, c := range n.Children {
		if c.Role == syntax.RoleParam {
			continue
		}
		b.visit(c, fr)
	}
}

func (b *builder) visit(n *syntax.Node, fr *frame) {
	switch n.Kind {
	case syntax.Command, syntax.Reporter:
		b.call(n, fr)
	case syntax.Identifier:
		b.variable(n, fr)
	case syntax.CodeBlock, syntax.ReporterBlock, syntax.AnonProc:
		b.block(n, nil, Callee{}, fr)
	case syntax.Error:
		for _, c := range n.Children {
			b.visit(c, fr)
		}
	}
}

// fold narrows the frame by ctx, or records a conflict and leaves the
// frame unchanged.
func (b *builder) fold(fr *frame, ctx agentctx.Context, n *syntax.Node) {
	next, conflict := agentctx.Fold(fr.ctx, ctx)
	if conflict >= 0 {
		b.lc.ContextErrors = append(b.lc.ContextErrors, ContextError{
			Span:        n.NameSpan,
			Prior:       fr.ctx,
			Conflicting: ctx,
			Primitive:   n.Name,
			Procedure:   fr.proc,
		})
		return
	}
	fr.ctx = next
}

func (b *builder) call(n *syntax.Node, fr *frame) {
	callee := b.lc.ResolveCall(n.Name)
	if callee.Known() {
		ctx := callee.Primitive.Context
		if callee.Class == syntax.ClassProcedure {
			ctx, _ = b.procedureContext(n.Name)
		}
		b.fold(fr, ctx, n)
	}
	var declared *syntax.Node
	if n.Name == "let" {
		declared = n.Child(syntax.RoleArg)
	}
	for _, c := range n.Children {
		switch {
		case c == declared:
		case c.Kind.IsBlock() && c.Role != syntax.RoleExtra:
			b.block(c, n, callee, fr)
		default:
			b.visit(c, fr)
		}
	}
	if declared != nil && declared.Kind == syntax.Identifier {
		b.declareLocal(n, declared, fr)
	}
}

func (b *builder) variable(n *syntax.Node, fr *frame) {
	if n.Class != syntax.ClassVariable && n.Class != syntax.ClassUnknown {
		return
	}
	ctx, ok := b.lc.VariableContext(n.Name)
	if !ok || b.lc.IsVisible(n.Name, n.Span.Start) {
		return
	}
	b.fold(fr, ctx, n)
}

// agentArg is the argument naming the agents an introducing block runs
// as: the first argument that is not itself a block.
func agentArg(call *syntax.Node) *syntax.Node {
	for _, a := range call.Args() {
		if !a.Kind.IsBlock() {
			return a
		}
	}
	return nil
}

func (b *builder) block(n, call *syntax.Node, callee Callee, fr *frame) {
	if n.Kind == syntax.AnonProc {
		b.anonymous(n, fr)
		return
	}
	cb := CodeBlock{Span: n.Span, Reporter: n.Kind == syntax.ReporterBlock, Arguments: fr.args}
	start := fr.ctx
	if call != nil {
		cb.Primitive = call.Name
		if callee.Breed.Valid {
			cb.Breed = callee.Breed.Plural
		}
		p := callee.Primitive
		switch {
		case p == nil:
		case p.BlockContext != agentctx.None:
			start, cb.Introduces = p.BlockContext, true
		case p.IntroducesContext:
			agent := agentArg(call)
			start, cb.Introduces = b.lc.agentContext(agent), true
			if br, ok := b.lc.Breeds[nodeName(agent)]; ok && cb.Breed == "" {
				cb.Breed = br.Plural
			}
		}
	}
	idx := len(b.lc.Blocks)
	b.lc.Blocks = append(b.lc.Blocks, cb)
	b.addBlock(fr.own, idx)
	inner := &frame{
		ctx:  start,
		proc: fr.proc,
		args: fr.args,
		own:  owner{proc: fr.own.proc, block: idx, anon: -1},
	}
	b.body(n, inner)
	b.lc.Blocks[idx].Context = inner.ctx
	if !cb.Introduces {
		fr.ctx = inner.ctx
	}
}

func (b *builder) anonymous(n *syntax.Node, fr *frame) {
	a := Procedure{
		Span:        n.Span,
		NameSpan:    n.NameSpan,
		Reporter:    n.Reporter,
		IsAnonymous: true,
		Scope:       b.lc.Scope,
	}
	for _, p := range n.Named(syntax.RoleParam) {
		a.Arguments = append(a.Arguments, p.Name)
	}
	idx := len(b.lc.Anonymous)
	b.lc.Anonymous = append(b.lc.Anonymous, a)
	b.addAnon(fr.own, idx)
	args := make([]string, 0, len(fr.args)+len(a.Arguments))
	args = append(append(args, fr.args...), a.Arguments...)
	inner := &frame{
		ctx:  fr.ctx,
		proc: fr.proc,
		args: args,
		own:  owner{proc: fr.own.proc, block: -1, anon: idx},
	}
	b.body(n, inner)
	b.lc.Anonymous[idx].Context = inner.ctx
}

func (b *builder) declareLocal(let, name *syntax.Node, fr *frame) {
	typ := prims.Wildcard
	if args := let.Named(syntax.RoleArg); len(args) > 1 {
		typ = b.inferType(args[1])
	}
	b.addLocal(fr.own, Local{Name: name.Name, Type: typ, Span: name.Span, Visible: let.Span.End})
}

// inferType guesses the type of a value from its syntax.
func (b *builder) inferType(n *syntax.Node) prims.Type {
	switch n.Kind {
	case syntax.Literal:
		if n.Class == syntax.ClassConstant {
			if n.Name == "true" || n.Name == "false" {
				return prims.Boolean
			}
			return prims.Number
		}
		if strings.HasPrefix(b.tree.Text(n.Span), `"`) {
			return prims.String
		}
		return prims.Number
	case syntax.ListLiteral:
		return prims.List
	case syntax.AnonProc:
		if n.Reporter {
			return prims.AnonReporter
		}
		return prims.AnonCommand
	case syntax.Reporter:
		if callee := b.lc.ResolveCall(n.Name); callee.Known() {
			return callee.Primitive.Return
		}
	}
	return prims.Wildcard
}

func (b *builder) addLocal(o owner, l Local) {
	switch {
	case o.block >= 0:
		b.lc.Blocks[o.block].Locals = append(b.lc.Blocks[o.block].Locals, l)
	case o.anon >= 0:
		b.lc.Anonymous[o.anon].Locals = append(b.lc.Anonymous[o.anon].Locals, l)
	default:
		o.proc.Locals = append(o.proc.Locals, l)
	}
}

func (b *builder) addBlock(o owner, i int) {
	switch {
	case o.block >= 0:
		b.lc.Blocks[o.block].Blocks = append(b.lc.Blocks[o.block].Blocks, i)
	case o.anon >= 0:
		b.lc.Anonymous[o.anon].Blocks = append(b.lc.Anonymous[o.anon].Blocks, i)
	default:
		o.proc.Blocks = append(o.proc.Blocks, i)
	}
}

func (b *builder) addAnon(o owner, i int) {
	switch {
	case o.block >= 0:
		b.lc.Blocks[o.block].Anonymous = append(b.lc.Blocks[o.block].Anonymous, i)
	case o.anon >= 0:
		b.lc.Anonymous[o.anon].Anonymous = append(b.lc.Anonymous[o.anon].Anonymous, i)
	default:
		o.proc.Anonymous = append(o.proc.Anonymous, i)
	}
}

func nodeName(n *syntax.Node) string {
	if n == nil {
		return ""
	}
	return n.Name
}
