// Package pp builds the preprocessor-directive structure of a token
// stream: which lines are directives, and how conditional regions nest.
// Conditions are kept as opaque token spans and never evaluated.
package pp

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	verr "github.com/mura6/glade/error"
	"github.com/mura6/glade/token"
)

func tracer() tracing.Trace {
	return tracing.Select("glade.pp")
}

var (
	ppErrUnterminatedConditional = errors.New("unterminated conditional")
	ppErrUnmatchedDirective      = errors.New("unmatched conditional directive")
	ppErrBranchAfterElse         = errors.New("conditional branch after #else")
)

type DirectiveKind int

const (
	DirectiveUnknown DirectiveKind = iota
	DirectiveInclude
	DirectiveDefine
	DirectiveUndef
	DirectiveIf
	DirectiveIfdef
	DirectiveIfndef
	DirectiveElif
	DirectiveElse
	DirectiveEndif
	DirectivePragma
	DirectiveError
	DirectiveWarning
	DirectiveLine
)

var directiveKinds = map[string]DirectiveKind{
	"include": DirectiveInclude,
	"define":  DirectiveDefine,
	"undef":   DirectiveUndef,
	"if":      DirectiveIf,
	"ifdef":   DirectiveIfdef,
	"ifndef":  DirectiveIfndef,
	"elif":    DirectiveElif,
	"else":    DirectiveElse,
	"endif":   DirectiveEndif,
	"pragma":  DirectivePragma,
	"error":   DirectiveError,
	"warning": DirectiveWarning,
	"line":    DirectiveLine,
}

func (k DirectiveKind) String() string {
	for name, kind := range directiveKinds {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Chunk is one node of the structure tree: a run of ordinary tokens, a
// single directive line, or a nested conditional region.
type Chunk interface {
	chunk()
}

// Code is a maximal run of tokens that belong to no directive line.
type Code struct {
	Tokens []token.Token
}

// Directive is one directive line. Tokens holds the whole line, the
// introducing '#' included.
type Directive struct {
	Kind   DirectiveKind
	Tokens []token.Token
}

// Conditional is a #if/#ifdef/#ifndef region. Each #elif/#else opens a
// new branch. End is the closing #endif, or nil when the region ran
// into the end of the file.
type Conditional struct {
	Branches []*Branch
	End      *Directive
}

// Branch is one arm of a conditional region.
type Branch struct {
	Directive *Directive
	Chunks    []Chunk
}

func (*Code) chunk()        {}
func (*Directive) chunk()   {}
func (*Conditional) chunk() {}

// Text reassembles the spelling of the directive line.
func (d *Directive) Text() string {
	var b strings.Builder
	for i, tok := range d.Tokens {
		if i >= 2 {
			b.WriteString(" ")
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

// Structure is the directive tree of one token stream.
type Structure struct {
	Chunks []Chunk
}

// Parse structures a token stream in one pass. Malformed input yields
// diagnostics, never a failure: an unmatched closer stays in the tree
// as a plain directive line, and an unterminated region keeps the
// chunks it collected.
func Parse(stream *token.Stream) (*Structure, verr.SpecErrors) {
	p := &parser{}

	toks := stream.Tokens()
	n := len(toks)
	if n > 0 && toks[n-1].Kind == token.EOF {
		n--
	}

	var code []token.Token
	flushCode := func() {
		if len(code) == 0 {
			return
		}
		p.appendChunk(&Code{Tokens: code})
		code = nil
	}

	i := 0
	for i < n {
		tok := toks[i]
		if tok.StartOfLine && tok.Kind == token.Punct && tok.Text == "#" {
			flushCode()
			end := i + 1
			for end < n && !toks[end].StartOfLine {
				end++
			}
			p.handleDirective(toks[i:end])
			i = end
			continue
		}
		code = append(code, tok)
		i++
	}
	flushCode()

	// Regions still open here ran into the end of the file. They stay
	// in the tree with everything they collected.
	for len(p.open) > 0 {
		cond := p.open[len(p.open)-1]
		p.open = p.open[:len(p.open)-1]
		opener := cond.Branches[0].Directive.Tokens[0]
		p.errs = append(p.errs, &verr.SpecError{
			Cause: ppErrUnterminatedConditional,
			Row:   opener.Row,
			Col:   opener.Col,
		})
	}

	tracer().Debugf("structured %d top-level chunks, %d diagnostics", len(p.chunks), len(p.errs))

	return &Structure{
		Chunks: p.chunks,
	}, p.errs
}

type parser struct {
	chunks []Chunk
	open   []*Conditional
	errs   verr.SpecErrors
}

func (p *parser) handleDirective(line []token.Token) {
	d := &Directive{
		Kind:   DirectiveUnknown,
		Tokens: line,
	}
	if len(line) > 1 {
		d.Kind = directiveKinds[line[1].Text]
	}

	switch d.Kind {
	case DirectiveIf, DirectiveIfdef, DirectiveIfndef:
		cond := &Conditional{
			Branches: []*Branch{
				{Directive: d},
			},
		}
		// Attach to the parent before pushing so the region survives
		// even when its #endif never arrives.
		p.appendChunk(cond)
		p.open = append(p.open, cond)
	case DirectiveElif, DirectiveElse:
		if len(p.open) == 0 {
			p.raiseUnmatched(d)
			return
		}
		top := p.open[len(p.open)-1]
		// A branch after the region's #else is reported but still opened
		// so its chunks stay in the tree.
		if top.Branches[len(top.Branches)-1].Directive.Kind == DirectiveElse {
			p.errs = append(p.errs, &verr.SpecError{
				Cause:  ppErrBranchAfterElse,
				Detail: d.Text(),
				Row:    d.Tokens[0].Row,
				Col:    d.Tokens[0].Col,
			})
		}
		top.Branches = append(top.Branches, &Branch{Directive: d})
	case DirectiveEndif:
		if len(p.open) == 0 {
			p.raiseUnmatched(d)
			return
		}
		top := p.open[len(p.open)-1]
		top.End = d
		p.open = p.open[:len(p.open)-1]
	default:
		p.appendChunk(d)
	}
}

// raiseUnmatched reports a closer with no open region and keeps the
// line in the tree as a plain directive chunk.
func (p *parser) raiseUnmatched(d *Directive) {
	p.errs = append(p.errs, &verr.SpecError{
		Cause:  ppErrUnmatchedDirective,
		Detail: d.Text(),
		Row:    d.Tokens[0].Row,
		Col:    d.Tokens[0].Col,
	})
	p.appendChunk(d)
}

func (p *parser) appendChunk(c Chunk) {
	if len(p.open) > 0 {
		top := p.open[len(p.open)-1]
		br := top.Branches[len(top.Branches)-1]
		br.Chunks = append(br.Chunks, c)
		return
	}
	p.chunks = append(p.chunks, c)
}

// Dump writes an indented rendering of the tree.
func (s *Structure) Dump(w io.Writer) {
	dumpChunks(w, s.Chunks, 0)
}

func dumpChunks(w io.Writer, chunks []Chunk, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range chunks {
		switch c := c.(type) {
		case *Code:
			fmt.Fprintf(w, "%vcode (%v tokens)\n", indent, len(c.Tokens))
		case *Directive:
			fmt.Fprintf(w, "%v%v\n", indent, c.Text())
		case *Conditional:
			for _, br := range c.Branches {
				fmt.Fprintf(w, "%v%v\n", indent, br.Directive.Text())
				dumpChunks(w, br.Chunks, depth+1)
			}
			if c.End != nil {
				fmt.Fprintf(w, "%v%v\n", indent, c.End.Text())
			} else {
				fmt.Fprintf(w, "%v(unterminated)\n", indent)
			}
		}
	}
}
