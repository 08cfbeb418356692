package token

import (
	"strings"
)

// Lex scans src in a single pass. It never fails: anything it cannot
// recognize becomes an Error token and lexing continues right after.
func Lex(src string, opts Options) *Stream {
	l := &lexer{
		src:  src,
		row:  1,
		col:  1,
		opts: opts,
	}

	var toks []Token
	startOfLine := true
	for {
		triviaStart := l.pos
		l.skipTrivia()
		trivia := src[triviaStart:l.pos]
		if strings.ContainsRune(trivia, '\n') {
			startOfLine = true
		}

		if l.pos >= len(src) {
			toks = append(toks, Token{
				Kind:        EOF,
				Trivia:      trivia,
				Row:         l.row,
				Col:         l.col,
				Offset:      l.pos,
				StartOfLine: startOfLine,
			})
			break
		}

		tok := l.lexToken()
		tok.Trivia = trivia
		tok.StartOfLine = startOfLine
		startOfLine = false
		toks = append(toks, tok)
	}

	tracer().Debugf("lexed %d tokens from %d bytes", len(toks), len(src))

	return &Stream{
		tokens: toks,
	}
}

type lexer struct {
	src  string
	pos  int
	row  int
	col  int
	opts Options
}

func (l *lexer) advance(n int) {
	for i := 0; i < n; i++ {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.row++
			l.col = 1
		case c&0xc0 == 0x80:
			// A UTF-8 continuation byte stays in the current column, so
			// Col counts characters rather than bytes.
		default:
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) skipTrivia() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isSpace(c):
			l.advance(1)
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.skipBlockComment()
		case c == '/' && l.opts.LineComments && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance(1)
			}
		default:
			return
		}
	}
}

// skipBlockComment consumes a comment. An unterminated comment swallows
// the rest of the file as trivia.
func (l *lexer) skipBlockComment() {
	l.advance(2)
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
			l.advance(2)
			return
		}
		l.advance(1)
	}
}

func (l *lexer) lexToken() Token {
	tok := Token{
		Row:    l.row,
		Col:    l.col,
		Offset: l.pos,
	}
	start := l.pos
	c := l.src[l.pos]

	switch {
	case isIdentHead(c) || c == '$' && l.opts.DollarIdents:
		for l.pos < len(l.src) && (isIdentChar(l.src[l.pos]) || l.src[l.pos] == '$' && l.opts.DollarIdents) {
			l.advance(1)
		}
		tok.Kind = Identifier
		tok.Text = l.src[start:l.pos]
		if l.opts.Keywords[tok.Text] {
			tok.Kind = Keyword
		}
	case isDigit(c) || c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		l.lexNumber()
		tok.Kind = Number
		tok.Text = l.src[start:l.pos]
	case c == '"':
		tok.Kind = l.lexQuoted('"', String)
		tok.Text = l.src[start:l.pos]
	case c == '\'':
		tok.Kind = l.lexQuoted('\'', Char)
		tok.Text = l.src[start:l.pos]
	default:
		if n := punctLen(l.src[l.pos:]); n > 0 {
			l.advance(n)
			tok.Kind = Punct
			tok.Text = l.src[start:l.pos]
			break
		}
		// A run of unrecognized bytes becomes a single Error token.
		for l.pos < len(l.src) && !l.isTokenStart(l.src[l.pos]) {
			l.advance(1)
		}
		tok.Kind = Error
		tok.Text = l.src[start:l.pos]
	}

	return tok
}

// lexNumber consumes a preprocessing number: it starts with a digit (or
// a '.' before a digit) and continues over identifier characters, dots,
// and signed exponents, so 1e+5, 0x1f, and even 0xE+2 are single tokens.
func (l *lexer) lexNumber() {
	l.advance(1)
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if (c == 'e' || c == 'E' || c == 'p' || c == 'P') &&
			l.pos+1 < len(l.src) && (l.src[l.pos+1] == '+' || l.src[l.pos+1] == '-') {
			l.advance(2)
			continue
		}
		if isIdentChar(c) || c == '.' {
			l.advance(1)
			continue
		}
		break
	}
}

// lexQuoted consumes a string or character literal. A literal left open
// at the end of its line becomes an Error token covering the rest of
// the line; the newline stays trivia.
func (l *lexer) lexQuoted(quote byte, kind Kind) Kind {
	l.advance(1)
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\n' {
			return Error
		}
		if c == '\\' && l.pos+1 < len(l.src) && l.src[l.pos+1] != '\n' {
			l.advance(2)
			continue
		}
		l.advance(1)
		if c == quote {
			return kind
		}
	}
	return Error
}

var punct3 = []string{"...", "<<=", ">>=", "->*"}

var punct2 = []string{
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "+=", "-=", "*=", "/=", "%=", "&=", "^=", "|=",
	"##", "::", ".*",
}

const punct1 = "[](){}.&*+-~!/%<>^|?:;=,#"

// punctLen returns the length of the longest punctuator at the head of
// s, or 0.
func punctLen(s string) int {
	if len(s) >= 3 {
		for _, p := range punct3 {
			if s[:3] == p {
				return 3
			}
		}
	}
	if len(s) >= 2 {
		for _, p := range punct2 {
			if s[:2] == p {
				return 2
			}
		}
	}
	if strings.IndexByte(punct1, s[0]) >= 0 {
		return 1
	}
	return 0
}

// isTokenStart reports whether a byte can begin a token or trivia.
// Anything else belongs to an Error run.
func (l *lexer) isTokenStart(c byte) bool {
	switch {
	case isSpace(c):
		return true
	case isIdentHead(c) || isDigit(c):
		return true
	case c == '"' || c == '\'':
		return true
	case c == '$' && l.opts.DollarIdents:
		return true
	case strings.IndexByte(punct1, c) >= 0:
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isIdentHead(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentHead(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
