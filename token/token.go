// Package token turns source text into a token stream the way a
// C-family preprocessor sees it. Lexing is tolerant: malformed input
// becomes Error tokens, never a failure, and the stream always
// reproduces the input byte for byte.
package token

import (
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("glade.token")
}

type Kind int

const (
	Identifier Kind = iota
	Keyword
	Number
	String
	Char
	Punct
	Error
	EOF
)

func (k Kind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case Number:
		return "number"
	case String:
		return "string"
	case Char:
		return "char"
	case Punct:
		return "punct"
	case Error:
		return "error"
	case EOF:
		return "eof"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Token is one lexed token. Trivia is the whitespace and comments
// between the previous token and this one; the EOF token carries the
// trailing trivia of the file. Concatenating Trivia+Text over a stream
// reproduces the source exactly.
type Token struct {
	Kind   Kind
	Text   string
	Trivia string

	// Row and Col are the 1-based position of the start of Text. Col
	// counts characters, not bytes; Offset is the byte offset.
	Row    int
	Col    int
	Offset int

	// StartOfLine is true when the token is the first on its line.
	// Preprocessor directives hang off '#' tokens that start a line.
	StartOfLine bool
}

func (t Token) String() string {
	if t.Kind == EOF {
		return fmt.Sprintf("%v %v:%v", t.Kind, t.Row, t.Col)
	}
	return fmt.Sprintf("%v %q %v:%v", t.Kind, t.Text, t.Row, t.Col)
}

// Options control lexing. The zero value lexes plain C-like text with
// no keywords and no line comments.
type Options struct {
	// Keywords marks identifiers to report as Keyword tokens.
	Keywords map[string]bool

	// LineComments treats // as a comment to the end of the line.
	LineComments bool

	// DollarIdents allows '$' in identifiers.
	DollarIdents bool
}

// DefaultOptions lexes C source: C keywords and line comments.
func DefaultOptions() Options {
	return Options{
		Keywords:     CKeywords(),
		LineComments: true,
	}
}

// CKeywords returns the C11 keyword set.
func CKeywords() map[string]bool {
	keywords := map[string]bool{}
	for _, kw := range []string{
		"auto", "break", "case", "char", "const", "continue", "default",
		"do", "double", "else", "enum", "extern", "float", "for", "goto",
		"if", "inline", "int", "long", "register", "restrict", "return",
		"short", "signed", "sizeof", "static", "struct", "switch",
		"typedef", "union", "unsigned", "void", "volatile", "while",
		"_Alignas", "_Alignof", "_Atomic", "_Bool", "_Complex",
		"_Generic", "_Imaginary", "_Noreturn", "_Static_assert",
		"_Thread_local",
	} {
		keywords[kw] = true
	}
	return keywords
}

// Stream is an immutable sequence of tokens ending in an EOF token.
type Stream struct {
	tokens []Token
}

// Tokens returns all tokens, the final EOF token included.
func (s *Stream) Tokens() []Token {
	return s.tokens
}

// Text reassembles the exact source the stream was lexed from.
func (s *Stream) Text() string {
	var b strings.Builder
	for _, tok := range s.tokens {
		b.WriteString(tok.Trivia)
		b.WriteString(tok.Text)
	}
	return b.String()
}

// Dump writes one token per line, EOF included.
func (s *Stream) Dump(w io.Writer) {
	for _, tok := range s.tokens {
		fmt.Fprintf(w, "%v\n", tok)
	}
}
