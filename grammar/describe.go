package grammar

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mura6/glade/grammar/symbol"
)

// The report types describe a grammar, its automaton, and its table in a
// machine-readable form. Terminal and non-terminal numbers index the
// Terminals and NonTerminals arrays; in a production's RHS, terminals
// appear as positive numbers and non-terminals as negative ones.

type Terminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type NonTerminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type Production struct {
	Number int   `json:"number"`
	LHS    int   `json:"lhs"`
	RHS    []int `json:"rhs"`
}

type Item struct {
	Production int `json:"production"`
	Dot        int `json:"dot"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

type Reduce struct {
	LookAhead  []int `json:"look_ahead"`
	Production int   `json:"production"`
}

type SRConflict struct {
	Symbol            int  `json:"symbol"`
	State             int  `json:"state"`
	Production        int  `json:"production"`
	AdoptedState      *int `json:"adopted_state"`
	AdoptedProduction *int `json:"adopted_production"`
}

type RRConflict struct {
	Symbol            int `json:"symbol"`
	Production1       int `json:"production_1"`
	Production2       int `json:"production_2"`
	AdoptedProduction int `json:"adopted_production"`
}

type State struct {
	Number     int           `json:"number"`
	Kernel     []*Item       `json:"kernel"`
	Shift      []*Transition `json:"shift"`
	Reduce     []*Reduce     `json:"reduce"`
	GoTo       []*Transition `json:"goto"`
	SRConflict []*SRConflict `json:"sr_conflict"`
	RRConflict []*RRConflict `json:"rr_conflict"`
}

type Report struct {
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*Production  `json:"productions"`
	States       []*State       `json:"states"`
}

func BuildReport(g *Grammar, automaton *LR0Automaton, tab *ParsingTable, conflicts []Conflict) (*Report, error) {
	symTab := g.symbolTable

	var terms []*Terminal
	{
		termSyms := symTab.TerminalSymbols()
		terms = make([]*Terminal, symTab.TerminalCount())

		for _, sym := range termSyms {
			name, ok := symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
			}

			terms[sym.Num()] = &Terminal{
				Number: sym.Num().Int(),
				Name:   name,
			}
		}
	}

	var nonTerms []*NonTerminal
	{
		nonTermSyms := symTab.NonTerminalSymbols()
		nonTerms = make([]*NonTerminal, symTab.NonTerminalCount())
		for _, sym := range nonTermSyms {
			name, ok := symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}

			nonTerms[sym.Num()] = &NonTerminal{
				Number: sym.Num().Int(),
				Name:   name,
			}
		}
	}

	var prods []*Production
	{
		ps := g.productionSet.getAllProductions()
		prods = make([]*Production, len(ps)+1)
		for _, p := range ps {
			rhs := make([]int, len(p.rhs))
			for i, e := range p.rhs {
				if e.IsTerminal() {
					rhs[i] = e.Num().Int()
				} else {
					rhs[i] = e.Num().Int() * -1
				}
			}

			prods[p.num.Int()] = &Production{
				Number: p.num.Int(),
				LHS:    p.lhs.Num().Int(),
				RHS:    rhs,
			}
		}
	}

	var states []*State
	{
		srConflicts := map[int][]*ShiftReduceConflict{}
		rrConflicts := map[int][]*ReduceReduceConflict{}
		for _, con := range conflicts {
			switch c := con.(type) {
			case *ShiftReduceConflict:
				srConflicts[c.State] = append(srConflicts[c.State], c)
			case *ReduceReduceConflict:
				rrConflicts[c.State] = append(rrConflicts[c.State], c)
			}
		}

		states = make([]*State, len(automaton.ordered))
		for _, s := range automaton.ordered {
			kernel := make([]*Item, len(s.items))
			for i, item := range s.items {
				p, ok := g.productionSet.findByID(item.prod)
				if !ok {
					return nil, fmt.Errorf("failed to generate states: production of kernel item not found: %v", item.prod)
				}

				kernel[i] = &Item{
					Production: p.num.Int(),
					Dot:        item.dot,
				}
			}

			sort.Slice(kernel, func(i, j int) bool {
				if kernel[i].Production != kernel[j].Production {
					return kernel[i].Production < kernel[j].Production
				}
				return kernel[i].Dot < kernel[j].Dot
			})

			var shift []*Transition
			var reduce []*Reduce
			var goTo []*Transition
			{
			TERMINALS_LOOP:
				for _, t := range symTab.TerminalSymbols() {
					act, next, prod := tab.getAction(s.num, t.Num())
					switch act {
					case ActionTypeShift:
						shift = append(shift, &Transition{
							Symbol: t.Num().Int(),
							State:  next.Int(),
						})
					case ActionTypeReduce, ActionTypeAccept:
						for _, r := range reduce {
							if r.Production == prod.Int() {
								r.LookAhead = append(r.LookAhead, t.Num().Int())
								continue TERMINALS_LOOP
							}
						}
						reduce = append(reduce, &Reduce{
							LookAhead:  []int{t.Num().Int()},
							Production: prod.Int(),
						})
					}
				}

				for _, n := range symTab.NonTerminalSymbols() {
					ty, next := tab.getGoTo(s.num, n.Num())
					if ty == GoToTypeRegistered {
						goTo = append(goTo, &Transition{
							Symbol: n.Num().Int(),
							State:  next.Int(),
						})
					}
				}

				sort.Slice(shift, func(i, j int) bool {
					return shift[i].State < shift[j].State
				})
				sort.Slice(reduce, func(i, j int) bool {
					return reduce[i].Production < reduce[j].Production
				})
				sort.Slice(goTo, func(i, j int) bool {
					return goTo[i].State < goTo[j].State
				})
			}

			sr := []*SRConflict{}
			rr := []*RRConflict{}
			{
				for _, c := range srConflicts[s.num.Int()] {
					conflict := &SRConflict{
						Symbol:     c.Symbol.Num().Int(),
						State:      c.NextState,
						Production: c.Production,
					}

					ty, next, prod := tab.getAction(s.num, c.Symbol.Num())
					switch ty {
					case ActionTypeShift:
						n := next.Int()
						conflict.AdoptedState = &n
					case ActionTypeReduce, ActionTypeAccept:
						n := prod.Int()
						conflict.AdoptedProduction = &n
					}

					sr = append(sr, conflict)
				}

				sort.Slice(sr, func(i, j int) bool {
					return sr[i].Symbol < sr[j].Symbol
				})

				for _, c := range rrConflicts[s.num.Int()] {
					rr = append(rr, &RRConflict{
						Symbol:            c.Symbol.Num().Int(),
						Production1:       c.Production1,
						Production2:       c.Production2,
						AdoptedProduction: c.AdoptedProduction,
					})
				}

				sort.Slice(rr, func(i, j int) bool {
					return rr[i].Symbol < rr[j].Symbol
				})
			}

			states[s.num.Int()] = &State{
				Number:     s.num.Int(),
				Kernel:     kernel,
				Shift:      shift,
				Reduce:     reduce,
				GoTo:       goTo,
				SRConflict: sr,
				RRConflict: rr,
			}
		}
	}

	return &Report{
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
	}, nil
}

// DumpGrammar writes the productions in declaration order, the implicit
// start production first.
func DumpGrammar(w io.Writer, g *Grammar) {
	for _, prod := range productionsByNum(g.productionSet) {
		fmt.Fprintf(w, "%4v  %v\n", prod.num, describeProduction(g, prod))
	}
}

// DumpAutomaton writes every state with its kernel items and transitions.
func DumpAutomaton(w io.Writer, g *Grammar, automaton *LR0Automaton) {
	for _, s := range automaton.ordered {
		fmt.Fprintf(w, "state %v\n", s.num)
		for _, item := range s.items {
			fmt.Fprintf(w, "    %v\n", describeItem(g, item))
		}
		for _, item := range s.emptyProdItems {
			fmt.Fprintf(w, "    %v\n", describeItem(g, item))
		}
		for _, sym := range sortedNextSymbols(s) {
			next := automaton.states[s.next[sym]]
			fmt.Fprintf(w, "    %v → state %v\n", symbolText(g, sym), next.num)
		}
	}
}

// DumpTable writes the non-error entries of the action and goto tables.
func DumpTable(w io.Writer, g *Grammar, tab *ParsingTable) {
	for num := 0; num < tab.stateCount; num++ {
		fmt.Fprintf(w, "state %v\n", num)
		for _, t := range g.symbolTable.TerminalSymbols() {
			act, next, prod := tab.getAction(stateNum(num), t.Num())
			switch act {
			case ActionTypeShift:
				fmt.Fprintf(w, "    %v: shift %v\n", symbolText(g, t), next)
			case ActionTypeReduce:
				p, _ := findByNum(g.productionSet, prod)
				fmt.Fprintf(w, "    %v: reduce %v\n", symbolText(g, t), describeProduction(g, p))
			case ActionTypeAccept:
				fmt.Fprintf(w, "    %v: accept\n", symbolText(g, t))
			}
		}
		for _, n := range g.symbolTable.NonTerminalSymbols() {
			ty, next := tab.getGoTo(stateNum(num), n.Num())
			if ty == GoToTypeRegistered {
				fmt.Fprintf(w, "    %v: goto %v\n", symbolText(g, n), next)
			}
		}
	}
}

// DumpConflicts writes conflicts one per line, in the order the table
// builder found them.
func DumpConflicts(w io.Writer, g *Grammar, conflicts []Conflict) {
	for _, con := range conflicts {
		switch c := con.(type) {
		case *ShiftReduceConflict:
			prod, _ := findByNum(g.productionSet, productionNum(c.Production))
			fmt.Fprintf(w, "state %v: shift/reduce conflict on %v: shift %v vs reduce %v (shift adopted)\n",
				c.State, symbolText(g, c.Symbol), c.NextState, describeProduction(g, prod))
		case *ReduceReduceConflict:
			prod1, _ := findByNum(g.productionSet, productionNum(c.Production1))
			prod2, _ := findByNum(g.productionSet, productionNum(c.Production2))
			adopted, _ := findByNum(g.productionSet, productionNum(c.AdoptedProduction))
			fmt.Fprintf(w, "state %v: reduce/reduce conflict on %v: %v vs %v (%v adopted)\n",
				c.State, symbolText(g, c.Symbol), describeProduction(g, prod1), describeProduction(g, prod2), describeProduction(g, adopted))
		}
	}
}

func productionsByNum(prods *productionSet) []*production {
	ps := make([]*production, 0, len(prods.getAllProductions()))
	for _, p := range prods.getAllProductions() {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool {
		return ps[i].num < ps[j].num
	})
	return ps
}

func findByNum(prods *productionSet, num productionNum) (*production, bool) {
	for _, p := range prods.getAllProductions() {
		if p.num == num {
			return p, true
		}
	}
	return nil, false
}

func describeProduction(g *Grammar, prod *production) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", symbolText(g, prod.lhs))
	if prod.isEmpty() {
		fmt.Fprintf(&b, " ε")
		return b.String()
	}
	for _, sym := range prod.rhs {
		fmt.Fprintf(&b, " %v", symbolText(g, sym))
	}
	return b.String()
}

func describeItem(g *Grammar, item *lrItem) string {
	prod, ok := g.productionSet.findByID(item.prod)
	if !ok {
		return item.id.String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", symbolText(g, prod.lhs))
	for i, sym := range prod.rhs {
		if i == item.dot {
			fmt.Fprintf(&b, "・%v", symbolText(g, sym))
			continue
		}
		fmt.Fprintf(&b, " %v", symbolText(g, sym))
	}
	if item.reducible {
		fmt.Fprintf(&b, "・")
	}
	return b.String()
}

func symbolText(g *Grammar, sym symbol.Symbol) string {
	text, ok := g.symbolTable.ToText(sym)
	if !ok {
		return sym.String()
	}
	return text
}

func sortedNextSymbols(s *lrState) []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(s.next))
	for sym := range s.next {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}
