// Copyright © 2024 The ELPS authors

// Package parser builds a syntax.Tree from NetLogo source.
//
// NetLogo cannot be parsed without knowing what each word is: the number of
// inputs a word takes decides where the next statement begins. The parser
// asks a Classifier about every word outside the current procedure's local
// scope. Classifiers are fed by the preprocess pass, so declarations made
// by the user are only understood on the parse after they are scanned.
package parser

import (
	"strings"

	"github.com/luthersystems/nlint/parser/lexer"
	"github.com/luthersystems/nlint/parser/token"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
)

// Classifier decides how a word outside the local scope takes arguments.
// A nil primitive means the word is not callable.
type Classifier interface {
	Classify(word string) (syntax.Class, *prims.Primitive)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(word string) (syntax.Class, *prims.Primitive)

func (fn ClassifierFunc) Classify(word string) (syntax.Class, *prims.Primitive) {
	return fn(word)
}

var declarationKeywords = map[string]syntax.Kind{
	"globals":               syntax.Globals,
	"extensions":            syntax.Extensions,
	"__includes":            syntax.Includes,
	"breed":                 syntax.BreedDecl,
	"directed-link-breed":   syntax.BreedDecl,
	"undirected-link-breed": syntax.BreedDecl,
}

// Parse tokenizes and parses src. Parse never fails: problems are recorded
// as syntax.Error nodes in the returned tree.
func Parse(file, src string, cls Classifier) *syntax.Tree {
	p := &parser{src: src, cls: cls}
	var comments []syntax.Span
	for _, tok := range lexer.Tokenize(file, src) {
		if tok.Type == token.COMMENT {
			comments = append(comments, span(tok))
			continue
		}
		p.toks = append(p.toks, tok)
	}
	tree := syntax.NewTree(file, src, p.parseProgram())
	tree.Comments = comments
	return tree
}

type parser struct {
	src    string
	toks   []*token.Token
	pos    int
	cls    Classifier
	scopes []map[string]bool
}

func span(tok *token.Token) syntax.Span {
	return syntax.Span{Start: tok.Source.Pos, End: tok.End()}
}

func lower(tok *token.Token) string {
	return strings.ToLower(tok.Text)
}

func (p *parser) peek() *token.Token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) *token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() *token.Token {
	tok := p.peek()
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) atEOF() bool {
	return p.peek().Type == token.EOF
}

func (p *parser) isWord(tok *token.Token, words ...string) bool {
	if tok.Type != token.WORD {
		return false
	}
	w := lower(tok)
	for _, s := range words {
		if w == s {
			return true
		}
	}
	return false
}

// atProcedureBoundary reports whether the next token ends a procedure body.
func (p *parser) atProcedureBoundary() bool {
	tok := p.peek()
	return tok.Type == token.EOF || p.isWord(tok, "end", "to", "to-report")
}

// atTopLevelStart reports whether the next token begins a declaration or
// procedure.
func (p *parser) atTopLevelStart() bool {
	tok := p.peek()
	if tok.Type != token.WORD {
		return false
	}
	w := lower(tok)
	if w == "to" || w == "to-report" {
		return true
	}
	if _, ok := declarationKeywords[w]; ok {
		return true
	}
	return strings.HasSuffix(w, "-own") && p.peekAt(1).Type == token.BRACKET_L
}

func (p *parser) errorNode(s syntax.Span, msg string) *syntax.Node {
	return &syntax.Node{Kind: syntax.Error, Span: s, NameSpan: s, Message: msg}
}

// errorHere reports a problem at the next token without consuming it.
func (p *parser) errorHere(msg string) *syntax.Node {
	tok := p.peek()
	s := span(tok)
	if tok.Type == token.EOF && len(p.src) > 0 {
		s = syntax.Span{Start: len(p.src) - 1, End: len(p.src)}
	}
	return p.errorNode(s, msg)
}

func (p *parser) pushScope() {
	p.scopes = append(p.scopes, make(map[string]bool))
}

func (p *parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *parser) declare(name string) {
	if len(p.scopes) > 0 {
		p.scopes[len(p.scopes)-1][name] = true
	}
}

func (p *parser) isLocal(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i][name] {
			return true
		}
	}
	return false
}

func (p *parser) classify(tok *token.Token) (syntax.Class, *prims.Primitive) {
	w := lower(tok)
	if p.isLocal(w) {
		return syntax.ClassVariable, nil
	}
	if p.cls == nil {
		return syntax.ClassUnknown, nil
	}
	return p.cls.Classify(w)
}

func (p *parser) parseProgram() *syntax.Node {
	root := &syntax.Node{Kind: syntax.Program, Span: syntax.Span{End: len(p.src)}}
	for !p.atEOF() {
		switch {
		case p.isWord(p.peek(), "to", "to-report"):
			root.Add(syntax.RoleNone, p.parseProcedure())
		case p.atTopLevelStart():
			root.Add(syntax.RoleNone, p.parseDeclaration())
		default:
			root.Add(syntax.RoleNone, p.skipTopLevel())
		}
	}
	return root
}

// skipTopLevel consumes tokens up to the next declaration or procedure and
// reports them as a single error.
func (p *parser) skipTopLevel() *syntax.Node {
	start := span(p.next())
	s := start
	for !p.atEOF() && !p.atTopLevelStart() {
		s = s.Join(span(p.next()))
	}
	msg := "expected a declaration or procedure"
	if strings.EqualFold(p.src[start.Start:start.End], "end") {
		msg = "end without a matching to"
	}
	return p.errorNode(s, msg)
}

func (p *parser) parseDeclaration() *syntax.Node {
	kw := p.next()
	w := lower(kw)
	kind, ok := declarationKeywords[w]
	if !ok {
		kind = syntax.BreedsOwn
	}
	n := &syntax.Node{Kind: kind, Name: w, Span: span(kw), NameSpan: span(kw), Class: syntax.ClassKeyword}
	if p.peek().Type != token.BRACKET_L {
		n.Add(syntax.RoleNone, p.errorHere("expected [ after "+w))
		return n
	}
	n.Span = n.Span.Join(span(p.next()))
	for {
		tok := p.peek()
		switch {
		case tok.Type == token.BRACKET_R:
			n.Span = n.Span.Join(span(p.next()))
			return n
		case tok.Type == token.EOF || p.atTopLevelStart():
			n.Add(syntax.RoleNone, p.errorHere("missing ] in "+w))
			return n
		case tok.Type == token.WORD:
			p.next()
			n.Add(syntax.RoleItem, &syntax.Node{Kind: syntax.Identifier, Name: lower(tok), Span: span(tok), NameSpan: span(tok)})
		case tok.Type == token.STRING:
			p.next()
			n.Add(syntax.RoleItem, &syntax.Node{Kind: syntax.Literal, Name: lexer.Unquote(tok.Text), Span: span(tok)})
		default:
			p.next()
			n.Add(syntax.RoleNone, p.errorNode(span(tok), "unexpected "+tok.Type.String()+" in "+w))
		}
	}
}

func (p *parser) parseProcedure() *syntax.Node {
	kw := p.next()
	n := &syntax.Node{Kind: syntax.Procedure, Span: span(kw), Reporter: lower(kw) == "to-report"}
	name := p.peek()
	if name.Type != token.WORD || p.atProcedureBoundary() {
		n.Add(syntax.RoleNone, p.errorHere("expected a procedure name"))
	} else {
		p.next()
		n.Name = lower(name)
		n.NameSpan = span(name)
		n.Span = n.Span.Join(n.NameSpan)
	}

	p.pushScope()
	defer p.popScope()
	if p.peek().Type == token.BRACKET_L {
		n.Span = n.Span.Join(span(p.next()))
		for p.peek().Type == token.WORD && !p.atProcedureBoundary() {
			tok := p.next()
			p.declare(lower(tok))
			n.Add(syntax.RoleParam, &syntax.Node{Kind: syntax.Identifier, Name: lower(tok), Span: span(tok), NameSpan: span(tok), Class: syntax.ClassVariable})
		}
		if p.peek().Type == token.BRACKET_R {
			n.Span = n.Span.Join(span(p.next()))
		} else {
			n.Add(syntax.RoleNone, p.errorHere("missing ] after procedure inputs"))
		}
	}

	for _, stmt := range p.parseStatements(false) {
		n.Add(syntax.RoleBody, stmt)
	}
	if p.isWord(p.peek(), "end") {
		n.Span = n.Span.Join(span(p.next()))
	} else {
		n.Add(syntax.RoleNone, p.errorHere("missing end for procedure "+n.Name))
	}
	return n
}

// parseStatements reads statements up to the end of a procedure or, inside
// brackets, up to the closing bracket. The terminator is not consumed.
func (p *parser) parseStatements(inBrackets bool) []*syntax.Node {
	var stmts []*syntax.Node
	for !p.atProcedureBoundary() {
		tok := p.peek()
		if inBrackets && tok.Type == token.BRACKET_R {
			break
		}
		start := p.pos
		var prev *syntax.Node
		if len(stmts) > 0 {
			prev = stmts[len(stmts)-1]
		}
		if stmt := p.parseStatement(prev); stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.pos == start {
			stmts = append(stmts, p.errorNode(span(p.next()), "unexpected "+tok.Type.String()))
		}
	}
	return stmts
}

// parseStatement parses one command. Expressions found where a command
// should begin are attached to prev as extra arguments when possible, which
// lets argument counting see them. It returns nil when nothing new was
// added to the statement list.
func (p *parser) parseStatement(prev *syntax.Node) *syntax.Node {
	tok := p.peek()
	switch tok.Type {
	case token.BRACKET_R, token.PAREN_R:
		p.next()
		return p.errorNode(span(tok), "unexpected "+tok.Type.String())
	case token.PAREN_L:
		n := p.parseParen()
		if n.Kind == syntax.Command {
			return n
		}
		return p.strayExpression(prev, n)
	case token.WORD:
		if tok.Text == "->" {
			p.next()
			return p.errorNode(span(tok), "-> outside of an anonymous procedure")
		}
		cls, prim := p.classify(tok)
		switch {
		case prim != nil && !prims.IsReporter(prim) && !prim.IsInfix():
			n := p.parseCall(tok, cls, prim, false, nil)
			p.bindLet(n)
			return n
		case prim == nil && cls == syntax.ClassUnknown:
			return p.parseUnknownCommand(tok)
		}
	}
	return p.strayExpression(prev, p.parseExpr(1, prims.Wildcard))
}

func (p *parser) strayExpression(prev, expr *syntax.Node) *syntax.Node {
	if expr == nil {
		return nil
	}
	if prev != nil && prev.Kind.IsCall() {
		prev.Add(syntax.RoleExtra, expr)
		return nil
	}
	e := p.errorNode(expr.Span, "expected a command")
	e.Add(syntax.RoleNone, expr)
	return e
}

// bindLet makes the variable introduced by a let statement visible to the
// statements that follow it.
func (p *parser) bindLet(n *syntax.Node) {
	if n.Name != "let" {
		return
	}
	if args := n.Named(syntax.RoleArg); len(args) > 0 && args[0].Kind == syntax.Identifier {
		p.declare(args[0].Name)
	}
}

// parseUnknownCommand reads a word nothing knows about. It takes every
// following value as an input so the rest of the line is not reported
// twice.
func (p *parser) parseUnknownCommand(tok *token.Token) *syntax.Node {
	p.next()
	n := &syntax.Node{Kind: syntax.Command, Name: lower(tok), Span: span(tok), NameSpan: span(tok)}
	for p.startsLooseArg() {
		n.Add(syntax.RoleArg, p.parseExpr(1, prims.Wildcard))
	}
	return n
}

// startsExpr reports whether the next token can begin a value.
func (p *parser) startsExpr() bool {
	tok := p.peek()
	switch tok.Type {
	case token.NUMBER, token.STRING, token.BRACKET_L, token.PAREN_L, token.ERROR:
		return true
	case token.WORD:
		if tok.Text == "->" || p.atProcedureBoundary() {
			return false
		}
		_, prim := p.classify(tok)
		return prim == nil || prims.IsReporter(prim)
	}
	return false
}

// startsLooseArg is startsExpr without unknown words, which more likely
// begin the next statement.
func (p *parser) startsLooseArg() bool {
	if !p.startsExpr() {
		return false
	}
	tok := p.peek()
	if tok.Type != token.WORD {
		return true
	}
	cls, prim := p.classify(tok)
	if prim != nil && prim.IsInfix() {
		return false
	}
	return cls != syntax.ClassUnknown
}

func argPrecedence(prim *prims.Primitive) int {
	if !prims.IsReporter(prim) {
		return 1
	}
	return prim.Precedence + 1
}

// parseCall reads the inputs of prim. tok is the primitive's word and has
// not been consumed yet.
func (p *parser) parseCall(tok *token.Token, cls syntax.Class, prim *prims.Primitive, paren bool, left *syntax.Node) *syntax.Node {
	p.next()
	kind := syntax.Command
	if prims.IsReporter(prim) {
		kind = syntax.Reporter
	}
	n := &syntax.Node{Kind: kind, Name: lower(tok), Span: span(tok), NameSpan: span(tok), Class: cls, Paren: paren}
	n.Add(syntax.RoleLeft, left)

	if paren && prim.IsVariadic() {
		for i := 0; p.peek().Type != token.PAREN_R && p.startsExpr(); i++ {
			n.Add(syntax.RoleArg, p.parseArg(parenSlot(prim, i), 1))
		}
		return n
	}
	minPrec := argPrecedence(prim)
	if prim.IsInfix() {
		minPrec = prim.Precedence + 1
		if prim.RightAssociative {
			minPrec = prim.Precedence
		}
	}
	for _, slot := range prim.Slots(prim.DefaultCount()) {
		if slot.Optional && slot.Types.IsBlock() && p.peek().Type != token.BRACKET_L {
			break
		}
		if !p.startsExpr() {
			break
		}
		n.Add(syntax.RoleArg, p.parseArg(slot.Types, minPrec))
	}
	return n
}

// parenSlot is the accepted type of the i-th input of a variadic primitive
// written in parentheses. Past the repeatable input any of the remaining
// inputs may follow.
func parenSlot(prim *prims.Primitive, i int) prims.Type {
	rep := 0
	for j, a := range prim.Right {
		if a.Repeatable {
			rep = j
			break
		}
	}
	if i < rep {
		return prim.Right[i].Types
	}
	var t prims.Type
	for _, a := range prim.Right[rep:] {
		t |= a.Types
	}
	return t
}

func (p *parser) parseArg(types prims.Type, minPrec int) *syntax.Node {
	tok := p.peek()
	if n := p.parseConcise(types); n != nil {
		return n
	}
	if types.Has(prims.Symbol|prims.Reference) && tok.Type == token.WORD {
		p.next()
		cls := syntax.ClassVariable
		if types.Has(prims.Reference) {
			cls, _ = p.classify(tok)
		}
		return &syntax.Node{Kind: syntax.Identifier, Name: lower(tok), Span: span(tok), NameSpan: span(tok), Class: cls}
	}
	return p.parseExpr(minPrec, types)
}

// parseExpr reads a value and any infix operators binding at least as
// tightly as minPrec.
func (p *parser) parseExpr(minPrec int, expected prims.Type) *syntax.Node {
	left := p.parsePrimary(expected)
	if left == nil {
		return nil
	}
	return p.parseInfix(left, minPrec)
}

func (p *parser) parseInfix(left *syntax.Node, minPrec int) *syntax.Node {
	for {
		tok := p.peek()
		if tok.Type != token.WORD {
			return left
		}
		cls, prim := p.classify(tok)
		if prim == nil || !prim.IsInfix() || prim.Precedence < minPrec {
			return left
		}
		left = p.parseCall(tok, cls, prim, false, left)
	}
}

func (p *parser) parsePrimary(expected prims.Type) *syntax.Node {
	tok := p.peek()
	switch tok.Type {
	case token.NUMBER:
		p.next()
		return &syntax.Node{Kind: syntax.Literal, Name: tok.Text, Span: span(tok)}
	case token.STRING:
		p.next()
		return &syntax.Node{Kind: syntax.Literal, Name: lexer.Unquote(tok.Text), Span: span(tok)}
	case token.ERROR:
		p.next()
		return p.errorNode(span(tok), "unterminated string")
	case token.BRACKET_L:
		return p.parseBracket(expected)
	case token.PAREN_L:
		return p.parseParen()
	case token.WORD:
		if tok.Text == "->" || p.atProcedureBoundary() {
			return nil
		}
		cls, prim := p.classify(tok)
		switch {
		case cls == syntax.ClassConstant:
			p.next()
			return &syntax.Node{Kind: syntax.Literal, Name: lower(tok), Span: span(tok), NameSpan: span(tok), Class: cls}
		case prim != nil:
			// An infix operator here is missing its left operand; the call
			// is kept so argument counting reports it.
			return p.parseCall(tok, cls, prim, false, nil)
		default:
			p.next()
			return &syntax.Node{Kind: syntax.Identifier, Name: lower(tok), Span: span(tok), NameSpan: span(tok), Class: cls}
		}
	}
	return nil
}

// parseParen reads a parenthesized expression or call. A call written
// first inside the parentheses may take extra inputs up to the closing
// parenthesis.
func (p *parser) parseParen() *syntax.Node {
	open := p.next()
	var n, call *syntax.Node
	tok := p.peek()
	if tok.Type == token.WORD && tok.Text != "->" && !p.atProcedureBoundary() {
		if cls, prim := p.classify(tok); prim != nil && !prim.IsInfix() {
			call = p.parseCall(tok, cls, prim, true, nil)
			n = p.parseInfix(call, 1)
		}
	}
	if n == nil {
		n = p.parseExpr(1, prims.Wildcard)
		if n == nil {
			n = p.errorNode(span(open), "empty parentheses")
		}
		if n.Kind.IsCall() {
			call = n
		}
	}
	for p.peek().Type != token.PAREN_R && p.startsExpr() {
		extra := p.parseExpr(1, prims.Wildcard)
		if call != nil {
			call.Add(syntax.RoleExtra, extra)
		} else {
			n.Add(syntax.RoleNone, p.errorNode(extra.Span, "unexpected value"))
		}
	}
	if p.peek().Type == token.PAREN_R {
		n.Span = n.Span.Join(span(open)).Join(span(p.next()))
	} else {
		n.Add(syntax.RoleNone, p.errorHere("missing )"))
	}
	return n
}

// parseConcise reads a primitive passed by name where an anonymous
// procedure is expected, as in "sort-by < xs" or "foreach xs print".
func (p *parser) parseConcise(types prims.Type) *syntax.Node {
	tok := p.peek()
	if tok.Type != token.WORD || !types.Has(prims.Anonymous) || types.Has(prims.List|prims.Wildcard|prims.String) {
		return nil
	}
	cls, prim := p.classify(tok)
	if prim == nil || !(prim.CanBeConcise || prim.IsInfix()) {
		return nil
	}
	p.next()
	s := span(tok)
	n := &syntax.Node{Kind: syntax.AnonProc, Span: s, Reporter: prims.IsReporter(prim)}
	n.Add(syntax.RoleBody, &syntax.Node{Kind: syntax.Identifier, Name: lower(tok), Span: s, NameSpan: s, Class: cls})
	return n
}

// parseBracket decides what an opening bracket starts from what follows it
// and from the type the enclosing call expects.
func (p *parser) parseBracket(expected prims.Type) *syntax.Node {
	switch {
	case p.atArrow():
		return p.parseAnon(expected)
	case p.precedesBlockOperator():
		return p.parseBlock(syntax.ReporterBlock)
	case expected.Has(prims.CommandBlock | prims.CodeBlock):
		return p.parseBlock(syntax.CodeBlock)
	case expected.Has(prims.ReporterBlocks):
		return p.parseBlock(syntax.ReporterBlock)
	case expected.Has(prims.Anonymous) && !expected.Has(prims.List|prims.Wildcard):
		return p.parseAnon(expected)
	}
	return p.parseList()
}

// atArrow reports whether the bracket at the next token opens an anonymous
// procedure with an explicit parameter list: "[ ->", "[ x ->" or
// "[ [x y] ->".
func (p *parser) atArrow() bool {
	isArrow := func(tok *token.Token) bool { return tok.Type == token.WORD && tok.Text == "->" }
	switch t := p.peekAt(1); {
	case isArrow(t):
		return true
	case t.Type == token.WORD:
		return isArrow(p.peekAt(2))
	case t.Type == token.BRACKET_L:
		i := 2
		for p.peekAt(i).Type == token.WORD {
			i++
		}
		return p.peekAt(i).Type == token.BRACKET_R && isArrow(p.peekAt(i+1))
	}
	return false
}

// closingBracket returns the offset from the current position of the
// bracket matching the one at the next token, or -1.
func (p *parser) closingBracket() int {
	depth := 0
	for i := 0; p.pos+i < len(p.toks); i++ {
		switch p.toks[p.pos+i].Type {
		case token.BRACKET_L:
			depth++
		case token.BRACKET_R:
			depth--
			if depth == 0 {
				return i
			}
		case token.EOF:
			return -1
		}
	}
	return -1
}

// precedesBlockOperator reports whether the bracketed text at the next
// token is the left operand of an operator taking a block, as in
// "[color] of turtle 0".
func (p *parser) precedesBlockOperator() bool {
	i := p.closingBracket()
	if i < 0 {
		return false
	}
	tok := p.peekAt(i + 1)
	if tok.Type != token.WORD {
		return false
	}
	_, prim := p.classify(tok)
	return prim != nil && prim.IsInfix() && prim.Left.Types.IsBlock()
}

func (p *parser) closeBracket(n *syntax.Node) {
	if p.peek().Type == token.BRACKET_R {
		n.Span = n.Span.Join(span(p.next()))
		return
	}
	n.Add(syntax.RoleNone, p.errorHere("missing ]"))
}

func (p *parser) parseBlock(kind syntax.Kind) *syntax.Node {
	n := &syntax.Node{Kind: kind, Span: span(p.next())}
	p.pushScope()
	defer p.popScope()
	if kind == syntax.CodeBlock {
		for _, stmt := range p.parseStatements(true) {
			n.Add(syntax.RoleBody, stmt)
		}
	} else {
		p.parseReporterBody(n)
	}
	p.closeBracket(n)
	return n
}

// parseReporterBody reads the expression of a reporter block. Anything
// after the first expression is kept as an extra so it can be reported.
func (p *parser) parseReporterBody(n *syntax.Node) {
	role := syntax.RoleBody
	for !p.atProcedureBoundary() && p.peek().Type != token.BRACKET_R {
		start := p.pos
		if p.startsExpr() {
			n.Add(role, p.parseExpr(1, prims.Wildcard))
			role = syntax.RoleExtra
		} else if stmt := p.parseStatement(nil); stmt != nil {
			e := p.errorNode(stmt.Span, "expected a reporter")
			if stmt.Kind != syntax.Error {
				e.Add(syntax.RoleNone, stmt)
			}
			n.Add(syntax.RoleNone, e)
		}
		if p.pos == start {
			tok := p.next()
			n.Add(syntax.RoleNone, p.errorNode(span(tok), "unexpected "+tok.Type.String()))
		}
	}
}

func (p *parser) parseAnon(expected prims.Type) *syntax.Node {
	n := &syntax.Node{Kind: syntax.AnonProc, Span: span(p.next())}
	p.pushScope()
	defer p.popScope()

	param := func(tok *token.Token) {
		p.declare(lower(tok))
		n.Add(syntax.RoleParam, &syntax.Node{Kind: syntax.Identifier, Name: lower(tok), Span: span(tok), NameSpan: span(tok), Class: syntax.ClassVariable})
	}
	arrow := false
	switch tok := p.peek(); {
	case tok.Type == token.WORD && tok.Text == "->":
		arrow = true
	case tok.Type == token.WORD && p.peekAt(1).Text == "->":
		param(p.next())
		arrow = true
	case tok.Type == token.BRACKET_L && p.atArrowList():
		p.next()
		for p.peek().Type == token.WORD {
			param(p.next())
		}
		p.next()
		arrow = true
	}
	if arrow {
		p.next()
	}

	n.Reporter = expected.Has(prims.AnonReporter) && !expected.Has(prims.AnonCommand)
	if expected.Has(prims.AnonReporter) == expected.Has(prims.AnonCommand) {
		n.Reporter = p.startsExpr() || p.peek().Type == token.BRACKET_R
	}
	if n.Reporter {
		p.parseReporterBody(n)
	} else {
		for _, stmt := range p.parseStatements(true) {
			n.Add(syntax.RoleBody, stmt)
		}
	}
	p.closeBracket(n)
	return n
}

// atArrowList reports whether the next token opens a bracketed parameter
// list followed by an arrow.
func (p *parser) atArrowList() bool {
	i := 1
	for p.peekAt(i).Type == token.WORD {
		i++
	}
	next := p.peekAt(i + 1)
	return p.peekAt(i).Type == token.BRACKET_R && next.Type == token.WORD && next.Text == "->"
}

func (p *parser) parseList() *syntax.Node {
	n := &syntax.Node{Kind: syntax.ListLiteral, Span: span(p.next())}
	for !p.atProcedureBoundary() && p.peek().Type != token.BRACKET_R {
		tok := p.peek()
		switch tok.Type {
		case token.BRACKET_L:
			n.Add(syntax.RoleItem, p.parseList())
		case token.NUMBER:
			p.next()
			n.Add(syntax.RoleItem, &syntax.Node{Kind: syntax.Literal, Name: tok.Text, Span: span(tok)})
		case token.STRING:
			p.next()
			n.Add(syntax.RoleItem, &syntax.Node{Kind: syntax.Literal, Name: lexer.Unquote(tok.Text), Span: span(tok)})
		case token.WORD:
			p.next()
			cls, _ := p.classify(tok)
			kind := syntax.Identifier
			if cls == syntax.ClassConstant {
				kind = syntax.Literal
			}
			n.Add(syntax.RoleItem, &syntax.Node{Kind: kind, Name: lower(tok), Span: span(tok), NameSpan: span(tok), Class: cls})
		default:
			p.next()
			n.Add(syntax.RoleNone, p.errorNode(span(tok), "unexpected "+tok.Type.String()+" in list"))
		}
	}
	p.closeBracket(n)
	return n
}
