package grammar

import (
	"fmt"

	"github.com/mura6/glade/grammar/symbol"
)

// FIRST and FOLLOW are computed by the usual fixed-point iteration over
// the production set. Both kinds of entry are a terminal set plus one
// marker: FIRST marks derivability of the empty string, FOLLOW marks the
// end of the input.

type termSet map[symbol.Symbol]struct{}

func (s termSet) add(sym symbol.Symbol) bool {
	if _, ok := s[sym]; ok {
		return false
	}
	s[sym] = struct{}{}
	return true
}

func (s termSet) addAll(other termSet) bool {
	changed := false
	for sym := range other {
		if s.add(sym) {
			changed = true
		}
	}
	return changed
}

type firstEntry struct {
	symbols termSet
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: termSet{},
	}
}

func (e *firstEntry) add(sym symbol.Symbol) bool {
	return e.symbols.add(sym)
}

func (e *firstEntry) addEmpty() bool {
	if e.empty {
		return false
	}
	e.empty = true
	return true
}

// firstSet maps each non-terminal to its FIRST set.
type firstSet map[symbol.Symbol]*firstEntry

// find computes the FIRST set of the RHS suffix of prod that starts at
// the given position. The result is empty-marked when every remaining
// symbol can derive ε, which includes a suffix past the end of the RHS.
func (fst firstSet) find(prod *production, head int) (*firstEntry, error) {
	entry := newFirstEntry()
	for _, sym := range prod.rhs[head:] {
		if sym.IsTerminal() {
			entry.add(sym)
			return entry, nil
		}

		e, ok := fst[sym]
		if !ok {
			return nil, fmt.Errorf("FIRST set was not found; symbol: %s", sym)
		}
		entry.symbols.addAll(e.symbols)
		if !e.empty {
			return entry, nil
		}
	}
	entry.addEmpty()
	return entry, nil
}

func genFirstSet(prods *productionSet) (firstSet, error) {
	fst := firstSet{}
	for _, prod := range prods.getAllProductions() {
		if _, ok := fst[prod.lhs]; !ok {
			fst[prod.lhs] = newFirstEntry()
		}
	}
	for changed := true; changed; {
		changed = false
		for _, prod := range prods.getAllProductions() {
			head, err := fst.find(prod, 0)
			if err != nil {
				return nil, err
			}
			e := fst[prod.lhs]
			if e.symbols.addAll(head.symbols) {
				changed = true
			}
			if head.empty && e.addEmpty() {
				changed = true
			}
		}
	}
	return fst, nil
}

type followEntry struct {
	symbols termSet
	eof     bool
}

func newFollowEntry() *followEntry {
	return &followEntry{
		symbols: termSet{},
	}
}

func (e *followEntry) add(sym symbol.Symbol) bool {
	return e.symbols.add(sym)
}

func (e *followEntry) addEOF() bool {
	if e.eof {
		return false
	}
	e.eof = true
	return true
}

// followSet maps each non-terminal to its FOLLOW set.
type followSet map[symbol.Symbol]*followEntry

func (flw followSet) find(sym symbol.Symbol) (*followEntry, error) {
	e, ok := flw[sym]
	if !ok {
		return nil, fmt.Errorf("FOLLOW set was not found; symbol: %s", sym)
	}
	return e, nil
}

// genFollowSet computes FOLLOW for every non-terminal. For each
// occurrence of a non-terminal in a RHS, the FIRST set of the rest of
// that RHS flows into its FOLLOW set; when the rest can derive ε, the
// FOLLOW set of the LHS flows in as well. The start symbol is followed
// by the end of the input.
func genFollowSet(prods *productionSet, first firstSet) (followSet, error) {
	flw := followSet{}
	for _, prod := range prods.getAllProductions() {
		if _, ok := flw[prod.lhs]; !ok {
			e := newFollowEntry()
			if prod.lhs.IsStart() {
				e.addEOF()
			}
			flw[prod.lhs] = e
		}
	}
	for changed := true; changed; {
		changed = false
		for _, prod := range prods.getAllProductions() {
			for i, sym := range prod.rhs {
				if sym.IsTerminal() {
					continue
				}

				e, err := flw.find(sym)
				if err != nil {
					return nil, err
				}
				rest, err := first.find(prod, i+1)
				if err != nil {
					return nil, err
				}
				if e.symbols.addAll(rest.symbols) {
					changed = true
				}
				if !rest.empty {
					continue
				}
				lhsFlw, err := flw.find(prod.lhs)
				if err != nil {
					return nil, err
				}
				if e.symbols.addAll(lhsFlw.symbols) {
					changed = true
				}
				if lhsFlw.eof && e.addEOF() {
					changed = true
				}
			}
		}
	}
	return flw, nil
}
