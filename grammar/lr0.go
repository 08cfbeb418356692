package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/mura6/glade/grammar/symbol"
)

// LR0Automaton is the canonical LR(0) collection of a grammar. State
// numbering is deterministic: state 0 holds the initial item S' →・S,
// and the remaining states are numbered breadth-first, visiting the
// transitions of each state in symbol order.
type LR0Automaton struct {
	initialState kernelID
	states       map[kernelID]*lrState

	// ordered lists the states by state number.
	ordered []*lrState
}

// StateCount returns the number of states in the automaton.
func (a *LR0Automaton) StateCount() int {
	return len(a.ordered)
}

func BuildLR0Automaton(g *Grammar) (*LR0Automaton, error) {
	return genLR0Automaton(g.productionSet, g.augmentedStartSymbol)
}

func genLR0Automaton(prods *productionSet, startSym symbol.Symbol) (*LR0Automaton, error) {
	if !startSym.IsStart() {
		return nil, fmt.Errorf("passed symbol is not a start symbol")
	}

	automaton := &LR0Automaton{
		states: map[kernelID]*lrState{},
	}

	currentState := stateNumInitial
	knownKernels := map[kernelID]struct{}{}
	uncheckedKernels := []*kernel{}

	// Generate the initial kernel.
	{
		prods, _ := prods.findByLHS(startSym)
		initialItem, err := newLR0Item(prods[0], 0)
		if err != nil {
			return nil, err
		}

		k, err := newKernel([]*lrItem{initialItem})
		if err != nil {
			return nil, err
		}

		automaton.initialState = k.id
		knownKernels[k.id] = struct{}{}
		uncheckedKernels = append(uncheckedKernels, k)
	}

	for len(uncheckedKernels) > 0 {
		nextUncheckedKernels := []*kernel{}
		for _, k := range uncheckedKernels {
			state, neighbours, err := genStateAndNeighbourKernels(k, prods)
			if err != nil {
				return nil, err
			}
			state.num = currentState
			currentState = currentState.next()

			automaton.states[state.id] = state
			automaton.ordered = append(automaton.ordered, state)

			for _, k := range neighbours {
				if _, known := knownKernels[k.id]; known {
					continue
				}
				knownKernels[k.id] = struct{}{}
				nextUncheckedKernels = append(nextUncheckedKernels, k)
			}
		}
		uncheckedKernels = nextUncheckedKernels
	}

	tracer().Debugf("LR(0) automaton has %d states", len(automaton.ordered))

	return automaton, nil
}

func genStateAndNeighbourKernels(k *kernel, prods *productionSet) (*lrState, []*kernel, error) {
	items, err := genLR0Closure(k, prods)
	if err != nil {
		return nil, nil, err
	}
	neighbours, err := genNeighbourKernels(items, prods)
	if err != nil {
		return nil, nil, err
	}

	next := map[symbol.Symbol]kernelID{}
	kernels := []*kernel{}
	for _, n := range neighbours {
		next[n.symbol] = n.kernel.id
		kernels = append(kernels, n.kernel)
	}

	reducible := map[productionID]struct{}{}
	var emptyProdItems []*lrItem
	for _, item := range items {
		if item.reducible {
			reducible[item.prod] = struct{}{}

			prod, ok := prods.findByID(item.prod)
			if !ok {
				return nil, nil, fmt.Errorf("reducible production not found: %v", item.prod)
			}
			if prod.isEmpty() {
				emptyProdItems = append(emptyProdItems, item)
			}
		}
	}

	return &lrState{
		kernel:         k,
		next:           next,
		reducible:      reducible,
		emptyProdItems: emptyProdItems,
	}, kernels, nil
}

// genLR0Closure expands a kernel into its closure. The known set keeps
// insertion order, so the items of a closure always come out in the same
// order for the same kernel.
func genLR0Closure(k *kernel, prods *productionSet) ([]*lrItem, error) {
	items := []*lrItem{}
	knownItems := linkedhashset.New()
	uncheckedItems := []*lrItem{}
	for _, item := range k.items {
		items = append(items, item)
		knownItems.Add(item.id)
		uncheckedItems = append(uncheckedItems, item)
	}
	for len(uncheckedItems) > 0 {
		nextUncheckedItems := []*lrItem{}
		for _, item := range uncheckedItems {
			if item.dottedSymbol.IsTerminal() {
				continue
			}

			ps, _ := prods.findByLHS(item.dottedSymbol)
			for _, prod := range ps {
				item, err := newLR0Item(prod, 0)
				if err != nil {
					return nil, err
				}
				if knownItems.Contains(item.id) {
					continue
				}
				items = append(items, item)
				knownItems.Add(item.id)
				nextUncheckedItems = append(nextUncheckedItems, item)
			}
		}
		uncheckedItems = nextUncheckedItems
	}

	return items, nil
}

type neighbourKernel struct {
	symbol symbol.Symbol
	kernel *kernel
}

func compareSymbols(a, b interface{}) int {
	s1 := a.(symbol.Symbol)
	s2 := b.(symbol.Symbol)
	switch {
	case s1 < s2:
		return -1
	case s1 > s2:
		return 1
	default:
		return 0
	}
}

// genNeighbourKernels advances the dot of every non-reducible item. The
// resulting kernels are ordered by the symbol the dot moved over, which
// fixes the numbering of the states they become.
func genNeighbourKernels(items []*lrItem, prods *productionSet) ([]*neighbourKernel, error) {
	kItemMap := map[symbol.Symbol][]*lrItem{}
	nextSyms := treeset.NewWith(compareSymbols)
	for _, item := range items {
		if item.dottedSymbol.IsNil() {
			continue
		}
		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, fmt.Errorf("a production was not found: %v", item.prod)
		}
		kItem, err := newLR0Item(prod, item.dot+1)
		if err != nil {
			return nil, err
		}
		kItemMap[item.dottedSymbol] = append(kItemMap[item.dottedSymbol], kItem)
		nextSyms.Add(item.dottedSymbol)
	}

	kernels := []*neighbourKernel{}
	var kErr error
	nextSyms.Each(func(_ int, v interface{}) {
		if kErr != nil {
			return
		}
		sym := v.(symbol.Symbol)
		k, err := newKernel(kItemMap[sym])
		if err != nil {
			kErr = err
			return
		}
		kernels = append(kernels, &neighbourKernel{
			symbol: sym,
			kernel: k,
		})
	})
	if kErr != nil {
		return nil, kErr
	}

	return kernels, nil
}
