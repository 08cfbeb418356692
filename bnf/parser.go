// Package bnf reads grammar descriptions written in a small BNF dialect.
//
// A description is a sequence of rules of the form
//
//	expr := expr '+' term | term
//
// One rule per line, with an optional trailing ';'. '#' starts a comment
// that runs to the end of the line. ε (or an empty alternative) denotes
// the empty production. The parser accumulates diagnostics and keeps
// going; a broken rule never hides the errors in the rules after it.
package bnf

import (
	"io"

	verr "github.com/mura6/glade/error"
)

// RootNode is the AST of a whole grammar description. Productions appear
// in declaration order; the first one names the start symbol.
type RootNode struct {
	Productions []*ProductionNode
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

// AlternativeNode is one '|'-separated branch of a rule. An epsilon
// alternative has no elements.
type AlternativeNode struct {
	Elements []*ElementNode
	Pos      Position
}

// ElementNode is a single RHS element: either a name (ID) or a quoted
// terminal spelling (Literal). Exactly one of the two is set.
type ElementNode struct {
	ID      string
	Literal string
	Pos     Position
}

// Parse reads a grammar description. When the description contains
// errors, Parse returns all of them and a nil AST; it never stops at
// the first one.
func Parse(src io.Reader) (*RootNode, verr.SpecErrors) {
	p := newParser(src)
	return p.parse()
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
	errs      verr.SpecErrors
}

func newParser(src io.Reader) *parser {
	return &parser{
		lex: newLexer(src),
	}
}

func (p *parser) parse() (*RootNode, verr.SpecErrors) {
	root := p.parseRoot()
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return root, nil
}

func (p *parser) parseRoot() *RootNode {
	var prods []*ProductionNode
	for {
		prod, cont := p.parseProductionOrRecover()
		if prod != nil {
			prods = append(prods, prod)
		}
		if !cont {
			break
		}
	}
	return &RootNode{
		Productions: prods,
	}
}

// parseProductionOrRecover parses one rule. When the rule is broken, the
// raised diagnostic is recorded and the rest of the line is discarded so
// parsing can resume at the next rule. cont is false once the end of the
// description is reached.
func (p *parser) parseProductionOrRecover() (prod *ProductionNode, cont bool) {
	cont = true

	defer func() {
		err := recover()
		if err == nil {
			return
		}
		specErr, ok := err.(*verr.SpecError)
		if !ok {
			panic(err)
		}
		p.errs = append(p.errs, specErr)
		prod = nil
		cont = p.skipToNextLine()
	}()

	prod = p.parseProduction()
	if prod == nil {
		cont = false
	}
	return
}

func (p *parser) parseProduction() *ProductionNode {
	for p.consumeWhen(tokenKindNewline) {
	}
	if p.consumeWhen(tokenKindEOF) {
		return nil
	}

	if !p.consumeWhen(tokenKindID) {
		raiseSyntaxError(p.peek().pos, synErrNoProductionName)
	}
	lhs := p.lastTok

	if !p.consumeWhen(tokenKindAssign) {
		raiseSyntaxError(p.peek().pos, synErrNoAssign)
	}

	rhs := []*AlternativeNode{
		p.parseAlternative(),
	}
	for p.consumeWhen(tokenKindOr) {
		rhs = append(rhs, p.parseAlternative())
	}

	p.consumeWhen(tokenKindSemicolon)
	if !p.consumeWhen(tokenKindNewline) && !p.consumeWhen(tokenKindEOF) {
		tok := p.peek()
		if tok.kind == tokenKindInvalid {
			raiseSyntaxErrorWithDetail(tok.pos, synErrInvalidToken, tok.text)
		}
		raiseSyntaxErrorWithDetail(tok.pos, synErrUnexpectedToken, string(tok.kind))
	}

	return &ProductionNode{
		LHS: lhs.text,
		RHS: rhs,
		Pos: lhs.pos,
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	pos := p.peek().pos

	if p.consumeWhen(tokenKindEmpty) {
		switch p.peek().kind {
		case tokenKindOr, tokenKindSemicolon, tokenKindNewline, tokenKindEOF:
		default:
			raiseSyntaxError(p.peek().pos, synErrEmptyNotAlone)
		}
		return &AlternativeNode{
			Pos: pos,
		}
	}

	var elems []*ElementNode
	for {
		switch {
		case p.consumeWhen(tokenKindID):
			elems = append(elems, &ElementNode{
				ID:  p.lastTok.text,
				Pos: p.lastTok.pos,
			})
		case p.consumeWhen(tokenKindLiteral):
			elems = append(elems, &ElementNode{
				Literal: p.lastTok.text,
				Pos:     p.lastTok.pos,
			})
		case p.consumeWhen(tokenKindEmpty):
			raiseSyntaxError(p.lastTok.pos, synErrEmptyNotAlone)
		default:
			return &AlternativeNode{
				Elements: elems,
				Pos:      pos,
			}
		}
	}
}

// skipToNextLine discards tokens up to and including the next newline.
// It reports whether any input remains.
func (p *parser) skipToNextLine() bool {
	if tok := p.peekedTok; tok != nil {
		p.peekedTok = nil
		switch tok.kind {
		case tokenKindNewline:
			return true
		case tokenKindEOF:
			return false
		}
	}
	for {
		tok, err := p.lex.next()
		if err != nil {
			continue
		}
		switch tok.kind {
		case tokenKindNewline:
			return true
		case tokenKindEOF:
			return false
		}
	}
}

func (p *parser) consumeWhen(kind tokenKind) bool {
	tok := p.peek()
	if tok.kind != kind {
		return false
	}
	p.lastTok = tok
	p.peekedTok = nil
	return true
}

func (p *parser) peek() *token {
	if p.peekedTok == nil {
		p.peekedTok = p.lexToken()
	}
	return p.peekedTok
}

func (p *parser) lexToken() *token {
	tok, err := p.lex.next()
	if err != nil {
		if specErr, ok := err.(*verr.SpecError); ok {
			panic(specErr)
		}
		panic(&verr.SpecError{
			Cause: err,
		})
	}
	return tok
}

func raiseSyntaxError(pos Position, cause error) {
	panic(&verr.SpecError{
		Cause: cause,
		Row:   pos.Row,
		Col:   pos.Col,
	})
}

func raiseSyntaxErrorWithDetail(pos Position, cause error, detail string) {
	panic(&verr.SpecError{
		Cause:  cause,
		Detail: detail,
		Row:    pos.Row,
		Col:    pos.Col,
	})
}
