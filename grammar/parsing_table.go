package grammar

import (
	"fmt"
	"sort"

	"github.com/mura6/glade/grammar/symbol"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
	ActionTypeError  = ActionType("error")
)

// actionEntry packs an action into an int: negative values are shifts
// (to state -e), positive values are reductions (of production e), and
// zero is the error entry. Reducing the start production S' → S is the
// accept action.
type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod)
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	if e == actionEntryEmpty {
		return ActionTypeError, stateNumInitial, productionNumNil
	}
	if e < 0 {
		return ActionTypeShift, stateNum(e * -1), productionNumNil
	}
	if productionNum(e) == productionNumStart {
		return ActionTypeAccept, stateNumInitial, productionNum(e)
	}
	return ActionTypeReduce, stateNumInitial, productionNum(e)
}

type GoToType string

const (
	GoToTypeRegistered = GoToType("registered")
	GoToTypeError      = GoToType("error")
)

type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state)
}

func (e goToEntry) describe() (GoToType, stateNum) {
	if e == goToEntryEmpty {
		return GoToTypeError, stateNumInitial
	}
	return GoToTypeRegistered, stateNum(e)
}

// Conflict is a diagnostic recorded while filling the table. The policy
// that picked the surviving action never changes, so a Conflict carries
// both candidates and what was adopted.
type Conflict interface {
	conflict()
}

// ShiftReduceConflict is resolved in favor of the shift.
type ShiftReduceConflict struct {
	State      int
	Symbol     symbol.Symbol
	NextState  int
	Production int
}

func (c *ShiftReduceConflict) conflict() {
}

// ReduceReduceConflict is resolved in favor of the production declared
// earliest, which is always AdoptedProduction.
type ReduceReduceConflict struct {
	State       int
	Symbol      symbol.Symbol
	Production1 int
	Production2 int

	AdoptedProduction int
}

func (c *ReduceReduceConflict) conflict() {
}

var (
	_ Conflict = &ShiftReduceConflict{}
	_ Conflict = &ReduceReduceConflict{}
)

// ParsingTable is a dense SLR(1) action/goto table. Rows are states;
// action columns are terminal numbers, goto columns non-terminal numbers.
type ParsingTable struct {
	actionTable      []actionEntry
	goToTable        []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int

	InitialState stateNum
}

// Action looks up the action for a state and a terminal.
func (t *ParsingTable) Action(state int, sym symbol.Symbol) (ActionType, int, int) {
	ty, next, prod := t.getAction(stateNum(state), sym.Num())
	return ty, next.Int(), prod.Int()
}

// GoTo looks up the transition for a state and a non-terminal.
func (t *ParsingTable) GoTo(state int, sym symbol.Symbol) (GoToType, int) {
	ty, next := t.getGoTo(stateNum(state), sym.Num())
	return ty, next.Int()
}

// StateCount returns the number of rows of the table.
func (t *ParsingTable) StateCount() int {
	return t.stateCount
}

func (t *ParsingTable) getAction(state stateNum, sym symbol.SymbolNum) (ActionType, stateNum, productionNum) {
	pos := state.Int()*t.terminalCount + sym.Int()
	return t.actionTable[pos].describe()
}

func (t *ParsingTable) getGoTo(state stateNum, sym symbol.SymbolNum) (GoToType, stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Int()
	return t.goToTable[pos].describe()
}

func (t *ParsingTable) readAction(row int, col int) actionEntry {
	return t.actionTable[row*t.terminalCount+col]
}

func (t *ParsingTable) writeAction(row int, col int, act actionEntry) {
	t.actionTable[row*t.terminalCount+col] = act
}

func (t *ParsingTable) writeGoTo(state stateNum, sym symbol.Symbol, nextState stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Num().Int()
	t.goToTable[pos] = newGoToEntry(nextState)
}

type slrTableBuilder struct {
	automaton    *LR0Automaton
	prods        *productionSet
	termCount    int
	nonTermCount int

	conflicts []Conflict
}

func (b *slrTableBuilder) build() (*ParsingTable, error) {
	var ptab *ParsingTable
	{
		initialState := b.automaton.states[b.automaton.initialState]
		ptab = &ParsingTable{
			actionTable:      make([]actionEntry, len(b.automaton.states)*b.termCount),
			goToTable:        make([]goToEntry, len(b.automaton.states)*b.nonTermCount),
			stateCount:       len(b.automaton.states),
			terminalCount:    b.termCount,
			nonTerminalCount: b.nonTermCount,
			InitialState:     initialState.num,
		}
	}

	// Walking the states by number keeps the order conflicts are
	// recorded in stable between builds.
	for _, state := range b.automaton.ordered {
		nextSyms := make([]symbol.Symbol, 0, len(state.next))
		for sym := range state.next {
			nextSyms = append(nextSyms, sym)
		}
		sort.Slice(nextSyms, func(i, j int) bool {
			return nextSyms[i] < nextSyms[j]
		})
		for _, sym := range nextSyms {
			nextState := b.automaton.states[state.next[sym]]
			if sym.IsTerminal() {
				b.writeShiftAction(ptab, state.num, sym, nextState.num)
			} else {
				ptab.writeGoTo(state.num, sym, nextState.num)
			}
		}

		reducibleProds := make([]*production, 0, len(state.reducible))
		for prodID := range state.reducible {
			prod, ok := b.prods.findByID(prodID)
			if !ok {
				return nil, fmt.Errorf("reducible production not found: %v", prodID)
			}
			reducibleProds = append(reducibleProds, prod)
		}
		sort.Slice(reducibleProds, func(i, j int) bool {
			return reducibleProds[i].num < reducibleProds[j].num
		})
		for _, reducibleProd := range reducibleProds {
			var reducibleItem *lrItem
			for _, item := range state.items {
				if item.prod != reducibleProd.id {
					continue
				}

				reducibleItem = item
				break
			}
			if reducibleItem == nil {
				for _, item := range state.emptyProdItems {
					if item.prod != reducibleProd.id {
						continue
					}

					reducibleItem = item
					break
				}
				if reducibleItem == nil {
					return nil, fmt.Errorf("reducible item not found; state: %v, production: %v", state.num, reducibleProd.num)
				}
			}

			lookAhead := make([]symbol.Symbol, 0, len(reducibleItem.lookAhead.symbols))
			for a := range reducibleItem.lookAhead.symbols {
				lookAhead = append(lookAhead, a)
			}
			sort.Slice(lookAhead, func(i, j int) bool {
				return lookAhead[i] < lookAhead[j]
			})
			for _, a := range lookAhead {
				b.writeReduceAction(ptab, state.num, a, reducibleProd.num)
			}
		}
	}

	return ptab, nil
}

// writeShiftAction writes a shift action to the parsing table. When a
// shift/reduce conflict occurs, the shift action always wins.
func (b *slrTableBuilder) writeShiftAction(tab *ParsingTable, state stateNum, sym symbol.Symbol, nextState stateNum) {
	act := tab.readAction(state.Int(), sym.Num().Int())
	if !act.isEmpty() {
		ty, _, p := act.describe()
		if ty == ActionTypeReduce || ty == ActionTypeAccept {
			b.conflicts = append(b.conflicts, &ShiftReduceConflict{
				State:      state.Int(),
				Symbol:     sym,
				NextState:  nextState.Int(),
				Production: p.Int(),
			})
			tab.writeAction(state.Int(), sym.Num().Int(), newShiftActionEntry(nextState))
			return
		}
	}
	tab.writeAction(state.Int(), sym.Num().Int(), newShiftActionEntry(nextState))
}

// writeReduceAction writes a reduce action to the parsing table. A
// shift/reduce conflict keeps the shift; a reduce/reduce conflict keeps
// the production declared earliest, which is the one with the smaller
// number.
func (b *slrTableBuilder) writeReduceAction(tab *ParsingTable, state stateNum, sym symbol.Symbol, prod productionNum) {
	act := tab.readAction(state.Int(), sym.Num().Int())
	if !act.isEmpty() {
		ty, s, p := act.describe()
		switch ty {
		case ActionTypeReduce, ActionTypeAccept:
			if p == prod {
				return
			}

			adopted := p
			if prod < p {
				adopted = prod
			}
			b.conflicts = append(b.conflicts, &ReduceReduceConflict{
				State:             state.Int(),
				Symbol:            sym,
				Production1:       p.Int(),
				Production2:       prod.Int(),
				AdoptedProduction: adopted.Int(),
			})
			tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(adopted))
		case ActionTypeShift:
			b.conflicts = append(b.conflicts, &ShiftReduceConflict{
				State:      state.Int(),
				Symbol:     sym,
				NextState:  s.Int(),
				Production: prod.Int(),
			})
		}
		return
	}
	tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(prod))
}
