package bnf

import (
	"bufio"
	"io"
	"strings"

	verr "github.com/mura6/glade/error"
)

type tokenKind string

const (
	tokenKindID        = tokenKind("id")
	tokenKindLiteral   = tokenKind("literal")
	tokenKindAssign    = tokenKind(":=")
	tokenKindOr        = tokenKind("|")
	tokenKindEmpty     = tokenKind("ε")
	tokenKindSemicolon = tokenKind(";")
	tokenKindNewline   = tokenKind("newline")
	tokenKindEOF       = tokenKind("eof")
	tokenKindInvalid   = tokenKind("invalid")
)

// Position is a 1-based source location in a grammar description.
type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

const nullChar = '\u0000'

type lexer struct {
	src *bufio.Reader

	// row/col is the position of the last character read() returned;
	// nextRow/nextCol is the position of the next unread character.
	row     int
	col     int
	nextRow int
	nextCol int

	peeked     bool
	peekedChar rune
	peekedRow  int
	peekedCol  int
	reachedEOF bool
}

func newLexer(src io.Reader) *lexer {
	return &lexer{
		src:     bufio.NewReader(src),
		nextRow: 1,
		nextCol: 1,
	}
}

func (l *lexer) next() (*token, error) {
	l.skipSpacesAndComments()

	c, eof, err := l.read()
	if err != nil {
		return nil, err
	}
	pos := newPosition(l.row, l.col)
	if eof {
		return &token{kind: tokenKindEOF, pos: pos}, nil
	}

	switch {
	case c == '\n':
		return &token{kind: tokenKindNewline, pos: pos}, nil
	case c == '\r':
		c1, eof, err := l.read()
		if err != nil {
			return nil, err
		}
		if !eof && c1 != '\n' {
			l.restore(c1)
		}
		return &token{kind: tokenKindNewline, pos: pos}, nil
	case c == ':':
		c1, eof, err := l.read()
		if err != nil {
			return nil, err
		}
		if eof || c1 != '=' {
			if !eof {
				l.restore(c1)
			}
			return nil, &verr.SpecError{
				Cause: synErrIncompleteAssign,
				Row:   pos.Row,
				Col:   pos.Col,
			}
		}
		return &token{kind: tokenKindAssign, pos: pos}, nil
	case c == '|':
		return &token{kind: tokenKindOr, pos: pos}, nil
	case c == ';':
		return &token{kind: tokenKindSemicolon, pos: pos}, nil
	case c == 'ε':
		return &token{kind: tokenKindEmpty, pos: pos}, nil
	case c == '\'':
		return l.lexLiteral(pos)
	case isIDHead(c):
		return l.lexID(c, pos), nil
	default:
		return &token{kind: tokenKindInvalid, text: string(c), pos: pos}, nil
	}
}

// lexLiteral reads a quoted terminal spelling. \' and \\ are the only
// escape sequences; a literal must be closed before the end of its line.
func (l *lexer) lexLiteral(pos Position) (*token, error) {
	var b strings.Builder
	for {
		c, eof, err := l.read()
		if err != nil {
			return nil, err
		}
		if eof || c == '\n' || c == '\r' {
			if !eof {
				l.restore(c)
			}
			return nil, &verr.SpecError{
				Cause: synErrUnclosedLiteral,
				Row:   pos.Row,
				Col:   pos.Col,
			}
		}
		switch c {
		case '\'':
			text := b.String()
			if text == "" {
				return nil, &verr.SpecError{
					Cause: synErrEmptyLiteral,
					Row:   pos.Row,
					Col:   pos.Col,
				}
			}
			return &token{kind: tokenKindLiteral, text: text, pos: pos}, nil
		case '\\':
			c1, eof, err := l.read()
			if err != nil {
				return nil, err
			}
			if eof {
				return nil, &verr.SpecError{
					Cause: synErrUnclosedLiteral,
					Row:   pos.Row,
					Col:   pos.Col,
				}
			}
			if c1 == '\'' || c1 == '\\' {
				b.WriteRune(c1)
				continue
			}
			b.WriteRune(c)
			b.WriteRune(c1)
		default:
			b.WriteRune(c)
		}
	}
}

func (l *lexer) lexID(head rune, pos Position) *token {
	var b strings.Builder
	b.WriteRune(head)
	for {
		c, eof, err := l.read()
		if err != nil || eof {
			break
		}
		if !isIDChar(c) {
			l.restore(c)
			break
		}
		b.WriteRune(c)
	}
	return &token{kind: tokenKindID, text: b.String(), pos: pos}
}

func (l *lexer) skipSpacesAndComments() {
	for {
		c, eof, err := l.read()
		if err != nil || eof {
			return
		}
		if c == ' ' || c == '\t' {
			continue
		}
		// A comment runs to the end of the line; the newline itself is
		// significant and stays in the stream.
		if c == '#' {
			for {
				c, eof, err := l.read()
				if err != nil || eof {
					return
				}
				if c == '\n' || c == '\r' {
					l.restore(c)
					break
				}
			}
			continue
		}
		l.restore(c)
		return
	}
}

func isIDHead(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIDChar(c rune) bool {
	return isIDHead(c) || c >= '0' && c <= '9' || c == '-'
}

func (l *lexer) read() (rune, bool, error) {
	if l.peeked {
		l.peeked = false
		l.row = l.peekedRow
		l.col = l.peekedCol
		return l.peekedChar, false, nil
	}
	if l.reachedEOF {
		l.row = l.nextRow
		l.col = l.nextCol
		return nullChar, true, nil
	}
	c, _, err := l.src.ReadRune()
	if err != nil {
		if err == io.EOF {
			l.reachedEOF = true
			l.row = l.nextRow
			l.col = l.nextCol
			return nullChar, true, nil
		}
		return nullChar, false, err
	}
	l.row = l.nextRow
	l.col = l.nextCol
	if c == '\n' {
		l.nextRow++
		l.nextCol = 1
	} else {
		l.nextCol++
	}
	return c, false, nil
}

// restore pushes the last read character back. Only a single character
// of look-ahead is ever needed.
func (l *lexer) restore(c rune) {
	l.peeked = true
	l.peekedChar = c
	l.peekedRow = l.row
	l.peekedCol = l.col
}
