package grammar

import (
	"testing"

	"github.com/mura6/glade/grammar/symbol"
)

// grammarFixture builds symbols, productions, and LR items from their
// textual spelling against the symbol table of a loaded grammar.
type grammarFixture struct {
	t      *testing.T
	symTab *symbol.Table
}

func newGrammarFixture(t *testing.T, symTab *symbol.Table) *grammarFixture {
	return &grammarFixture{
		t:      t,
		symTab: symTab,
	}
}

func (f *grammarFixture) sym(text string) symbol.Symbol {
	f.t.Helper()

	sym, ok := f.symTab.ToSymbol(text)
	if !ok {
		f.t.Fatalf("symbol was not found: %v", text)
	}
	return sym
}

func (f *grammarFixture) prod(lhs string, rhs ...string) *production {
	f.t.Helper()

	rhsSyms := make([]symbol.Symbol, len(rhs))
	for i, text := range rhs {
		rhsSyms[i] = f.sym(text)
	}
	prod, err := newProduction(f.sym(lhs), rhsSyms)
	if err != nil {
		f.t.Fatalf("failed to create a production: %v", err)
	}
	return prod
}

func (f *grammarFixture) item(lhs string, dot int, rhs ...string) *lrItem {
	f.t.Helper()

	item, err := newLR0Item(f.prod(lhs, rhs...), dot)
	if err != nil {
		f.t.Fatalf("failed to create an LR0 item: %v", err)
	}
	return item
}
