// Package grammar builds context-free grammars from BNF descriptions and
// constructs LR(0) automatons and SLR(1) parsing tables from them.
//
// Construction is deterministic: the same description always yields the
// same symbol numbers, production numbers, state numbers, and table.
// Problems in a description are accumulated as diagnostics; only the
// impossible (an unresolvable start symbol, no rules at all) prevents a
// result.
package grammar

import (
	"io"

	"github.com/mura6/glade/bnf"
	verr "github.com/mura6/glade/error"
	"github.com/mura6/glade/grammar/symbol"
)

// Grammar is a context-free grammar ready for automaton and table
// construction. The start production S' → S is added implicitly, where
// S is the LHS of the first rule in the description.
type Grammar struct {
	productionSet        *productionSet
	startSymbol          symbol.Symbol
	augmentedStartSymbol symbol.Symbol
	symbolTable          *symbol.Table
}

// SymbolTable exposes the name↔symbol mapping, mainly for rendering.
func (g *Grammar) SymbolTable() *symbol.Table {
	return g.symbolTable
}

type GrammarBuilder struct {
	AST *bnf.RootNode

	errs verr.SpecErrors
}

// Build validates the AST and assembles a Grammar. All diagnostics are
// collected before returning; when any were found, Build returns them
// all and no grammar.
func (b *GrammarBuilder) Build() (*Grammar, error) {
	if len(b.AST.Productions) == 0 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoProduction,
		})
		return nil, b.errs
	}

	symTab := symbol.NewTable()

	// The first pass registers every LHS so rules may reference each
	// other regardless of declaration order. Names are classified only
	// once the whole description is read: a name some rule defines is a
	// non-terminal whatever its spelling, and only never-defined
	// all-caps names resolve to terminals of the lexical alphabet.
	for _, prod := range b.AST.Productions {
		_, err := symTab.RegisterNonTerminalSymbol(prod.LHS)
		if err != nil {
			return nil, err
		}
	}

	prodSet := newProductionSet()
	for _, prod := range b.AST.Productions {
		lhsSym, _ := symTab.ToSymbol(prod.LHS)
		for _, alt := range prod.RHS {
			rhs := make([]symbol.Symbol, 0, len(alt.Elements))
			resolved := true
			for _, elem := range alt.Elements {
				var sym symbol.Symbol
				var err error
				switch {
				case elem.Literal != "":
					sym, err = symTab.RegisterTerminalSymbol(literalText(elem.Literal))
				default:
					var found bool
					sym, found = symTab.ToSymbol(elem.ID)
					if found {
						break
					}
					if isLexicalName(elem.ID) {
						sym, err = symTab.RegisterTerminalSymbol(elem.ID)
						break
					}
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrUndefinedSym,
						Detail: elem.ID,
						Row:    elem.Pos.Row,
						Col:    elem.Pos.Col,
					})
					resolved = false
					continue
				}
				if err != nil {
					return nil, err
				}
				rhs = append(rhs, sym)
			}
			if !resolved {
				continue
			}
			p, err := newProduction(lhsSym, rhs)
			if err != nil {
				return nil, err
			}
			if !prodSet.append(p) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateProduction,
					Detail: prod.LHS,
					Row:    alt.Pos.Row,
					Col:    alt.Pos.Col,
				})
			}
		}
	}

	startText := b.AST.Productions[0].LHS
	startSym, ok := symTab.ToSymbol(startText)
	if !ok {
		return nil, b.errs
	}

	// Identifiers cannot contain an apostrophe, so the augmented start
	// symbol never collides with a user-defined name.
	augSym, err := symTab.RegisterStartSymbol(startText + "'")
	if err != nil {
		return nil, err
	}
	augProd, err := newProduction(augSym, []symbol.Symbol{startSym})
	if err != nil {
		return nil, err
	}
	prodSet.append(augProd)

	if len(b.errs) > 0 {
		return nil, b.errs
	}

	return &Grammar{
		productionSet:        prodSet,
		startSymbol:          startSym,
		augmentedStartSymbol: augSym,
		symbolTable:          symTab,
	}, nil
}

// Load parses a BNF description and builds its grammar in one step.
func Load(src io.Reader) (*Grammar, error) {
	ast, errs := bnf.Parse(src)
	if len(errs) > 0 {
		return nil, errs
	}
	b := GrammarBuilder{
		AST: ast,
	}
	return b.Build()
}

// isLexicalName reports whether an undefined name may denote a terminal
// of the lexical alphabet. All-caps names like IDENTIFIER or NUMBER that
// no rule defines are terminals the tokenizer provides. A defined name
// is a non-terminal regardless of its spelling; this check applies only
// after definition lookup failed.
func isLexicalName(text string) bool {
	if text == "" {
		return false
	}
	if text[0] < 'A' || text[0] > 'Z' {
		return false
	}
	for _, c := range text {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

// literalText is the symbol-table key of a quoted terminal. The quotes
// stay in the key so a literal can never collide with an identifier.
func literalText(text string) string {
	return "'" + text + "'"
}
