package grammar

import (
	"fmt"

	"github.com/mura6/glade/grammar/symbol"
)

// attachLookAhead turns the LR(0) automaton into an SLR(1) one: every
// reducible item receives the FOLLOW set of its LHS as its look-ahead.
func attachLookAhead(lr0 *LR0Automaton, prods *productionSet, follow followSet) error {
	for _, state := range lr0.states {
		for prodID := range state.reducible {
			prod, ok := prods.findByID(prodID)
			if !ok {
				return fmt.Errorf("reducible production not found: %v", prodID)
			}

			flw, err := follow.find(prod.lhs)
			if err != nil {
				return err
			}

			var reducibleItem *lrItem
			for _, item := range state.items {
				if item.prod != prodID {
					continue
				}

				reducibleItem = item
				break
			}
			if reducibleItem == nil {
				for _, item := range state.emptyProdItems {
					if item.prod != prodID {
						continue
					}

					reducibleItem = item
					break
				}
				if reducibleItem == nil {
					return fmt.Errorf("reducible item not found; state: %v, production: %v", state.num, prodID)
				}
			}

			if reducibleItem.lookAhead.symbols == nil {
				reducibleItem.lookAhead.symbols = map[symbol.Symbol]struct{}{}
			}

			for sym := range flw.symbols {
				reducibleItem.lookAhead.symbols[sym] = struct{}{}
			}
			if flw.eof {
				reducibleItem.lookAhead.symbols[symbol.SymbolEOF] = struct{}{}
			}
		}
	}

	return nil
}

// BuildSLRTable builds the SLR(1) parsing table of a grammar over its
// LR(0) automaton. Conflicts never fail the build; they are resolved by
// fixed policies and returned so callers can report them:
//
//   - shift/reduce: the shift wins.
//   - reduce/reduce: the production declared earliest wins.
func BuildSLRTable(g *Grammar, automaton *LR0Automaton) (*ParsingTable, []Conflict, error) {
	first, err := genFirstSet(g.productionSet)
	if err != nil {
		return nil, nil, err
	}
	follow, err := genFollowSet(g.productionSet, first)
	if err != nil {
		return nil, nil, err
	}
	err = attachLookAhead(automaton, g.productionSet, follow)
	if err != nil {
		return nil, nil, err
	}

	b := &slrTableBuilder{
		automaton:    automaton,
		prods:        g.productionSet,
		termCount:    g.symbolTable.TerminalCount(),
		nonTermCount: g.symbolTable.NonTerminalCount(),
	}
	tab, err := b.build()
	if err != nil {
		return nil, nil, err
	}
	tracer().Debugf("SLR(1) table: %d states, %d conflicts", tab.stateCount, len(b.conflicts))
	return tab, b.conflicts, nil
}
