package grammar

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mura6/glade/grammar/symbol"
)

type expectedLRState struct {
	kernelItems    []*lrItem
	nextStates     map[symbol.Symbol][]*lrItem
	reducibleProds []*production
	emptyProdItems []*lrItem
}

func TestBuildLR0Automaton(t *testing.T) {
	src := `
expr := expr '+' term | term
term := term '*' factor | factor
factor := '(' expr ')' | IDENTIFIER
`

	gram, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	automaton, err := BuildLR0Automaton(gram)
	if err != nil {
		t.Fatalf("failed to create a LR0 automaton: %v", err)
	}
	if automaton == nil {
		t.Fatalf("BuildLR0Automaton returns nil without any error")
	}

	initialState := automaton.states[automaton.initialState]
	if initialState == nil {
		t.Errorf("failed to get an initial state: %v", automaton.initialState)
	}
	if initialState.num != stateNumInitial {
		t.Errorf("the initial state must be state 0: got: %v", initialState.num)
	}

	fx := newGrammarFixture(t, gram.symbolTable)

	expectedKernels := map[int][]*lrItem{
		0: {
			fx.item("expr'", 0, "expr"),
		},
		1: {
			fx.item("expr'", 1, "expr"),
			fx.item("expr", 1, "expr", "'+'", "term"),
		},
		2: {
			fx.item("expr", 1, "term"),
			fx.item("term", 1, "term", "'*'", "factor"),
		},
		3: {
			fx.item("term", 1, "factor"),
		},
		4: {
			fx.item("factor", 1, "'('", "expr", "')'"),
		},
		5: {
			fx.item("factor", 1, "IDENTIFIER"),
		},
		6: {
			fx.item("expr", 2, "expr", "'+'", "term"),
		},
		7: {
			fx.item("term", 2, "term", "'*'", "factor"),
		},
		8: {
			fx.item("expr", 1, "expr", "'+'", "term"),
			fx.item("factor", 2, "'('", "expr", "')'"),
		},
		9: {
			fx.item("expr", 3, "expr", "'+'", "term"),
			fx.item("term", 1, "term", "'*'", "factor"),
		},
		10: {
			fx.item("term", 3, "term", "'*'", "factor"),
		},
		11: {
			fx.item("factor", 3, "'('", "expr", "')'"),
		},
	}

	expectedStates := []*expectedLRState{
		{
			kernelItems: expectedKernels[0],
			nextStates: map[symbol.Symbol][]*lrItem{
				fx.sym("expr"):       expectedKernels[1],
				fx.sym("term"):       expectedKernels[2],
				fx.sym("factor"):     expectedKernels[3],
				fx.sym("'('"):        expectedKernels[4],
				fx.sym("IDENTIFIER"): expectedKernels[5],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[1],
			nextStates: map[symbol.Symbol][]*lrItem{
				fx.sym("'+'"): expectedKernels[6],
			},
			reducibleProds: []*production{
				fx.prod("expr'", "expr"),
			},
		},
		{
			kernelItems: expectedKernels[2],
			nextStates: map[symbol.Symbol][]*lrItem{
				fx.sym("'*'"): expectedKernels[7],
			},
			reducibleProds: []*production{
				fx.prod("expr", "term"),
			},
		},
		{
			kernelItems: expectedKernels[3],
			nextStates:  map[symbol.Symbol][]*lrItem{},
			reducibleProds: []*production{
				fx.prod("term", "factor"),
			},
		},
		{
			kernelItems: expectedKernels[4],
			nextStates: map[symbol.Symbol][]*lrItem{
				fx.sym("expr"):       expectedKernels[8],
				fx.sym("term"):       expectedKernels[2],
				fx.sym("factor"):     expectedKernels[3],
				fx.sym("'('"):        expectedKernels[4],
				fx.sym("IDENTIFIER"): expectedKernels[5],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[5],
			nextStates:  map[symbol.Symbol][]*lrItem{},
			reducibleProds: []*production{
				fx.prod("factor", "IDENTIFIER"),
			},
		},
		{
			kernelItems: expectedKernels[6],
			nextStates: map[symbol.Symbol][]*lrItem{
				fx.sym("term"):       expectedKernels[9],
				fx.sym("factor"):     expectedKernels[3],
				fx.sym("'('"):        expectedKernels[4],
				fx.sym("IDENTIFIER"): expectedKernels[5],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[7],
			nextStates: map[symbol.Symbol][]*lrItem{
				fx.sym("factor"):     expectedKernels[10],
				fx.sym("'('"):        expectedKernels[4],
				fx.sym("IDENTIFIER"): expectedKernels[5],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[8],
			nextStates: map[symbol.Symbol][]*lrItem{
				fx.sym("'+'"): expectedKernels[6],
				fx.sym("')'"): expectedKernels[11],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[9],
			nextStates: map[symbol.Symbol][]*lrItem{
				fx.sym("'*'"): expectedKernels[7],
			},
			reducibleProds: []*production{
				fx.prod("expr", "expr", "'+'", "term"),
			},
		},
		{
			kernelItems: expectedKernels[10],
			nextStates:  map[symbol.Symbol][]*lrItem{},
			reducibleProds: []*production{
				fx.prod("term", "term", "'*'", "factor"),
			},
		},
		{
			kernelItems: expectedKernels[11],
			nextStates:  map[symbol.Symbol][]*lrItem{},
			reducibleProds: []*production{
				fx.prod("factor", "'('", "expr", "')'"),
			},
		},
	}

	testLRAutomaton(t, expectedStates, automaton)
}

func TestLR0AutomatonContainingEmptyProduction(t *testing.T) {
	src := `
s := foo bar
foo := ε
bar := 'b' | ε
`

	gram, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	automaton, err := BuildLR0Automaton(gram)
	if err != nil {
		t.Fatalf("failed to create a LR0 automaton: %v", err)
	}
	if automaton == nil {
		t.Fatalf("BuildLR0Automaton returns nil without any error")
	}

	initialState := automaton.states[automaton.initialState]
	if initialState == nil {
		t.Errorf("failed to get an initial state: %v", automaton.initialState)
	}

	fx := newGrammarFixture(t, gram.symbolTable)

	expectedKernels := map[int][]*lrItem{
		0: {
			fx.item("s'", 0, "s"),
		},
		1: {
			fx.item("s'", 1, "s"),
		},
		2: {
			fx.item("s", 1, "foo", "bar"),
		},
		3: {
			fx.item("s", 2, "foo", "bar"),
		},
		4: {
			fx.item("bar", 1, "'b'"),
		},
	}

	expectedStates := []*expectedLRState{
		{
			kernelItems: expectedKernels[0],
			nextStates: map[symbol.Symbol][]*lrItem{
				fx.sym("s"):   expectedKernels[1],
				fx.sym("foo"): expectedKernels[2],
			},
			reducibleProds: []*production{
				fx.prod("foo"),
			},
			emptyProdItems: []*lrItem{
				fx.item("foo", 0),
			},
		},
		{
			kernelItems: expectedKernels[1],
			nextStates:  map[symbol.Symbol][]*lrItem{},
			reducibleProds: []*production{
				fx.prod("s'", "s"),
			},
		},
		{
			kernelItems: expectedKernels[2],
			nextStates: map[symbol.Symbol][]*lrItem{
				fx.sym("bar"): expectedKernels[3],
				fx.sym("'b'"): expectedKernels[4],
			},
			reducibleProds: []*production{
				fx.prod("bar"),
			},
			emptyProdItems: []*lrItem{
				fx.item("bar", 0),
			},
		},
		{
			kernelItems: expectedKernels[3],
			nextStates:  map[symbol.Symbol][]*lrItem{},
			reducibleProds: []*production{
				fx.prod("s", "foo", "bar"),
			},
		},
		{
			kernelItems: expectedKernels[4],
			nextStates:  map[symbol.Symbol][]*lrItem{},
			reducibleProds: []*production{
				fx.prod("bar", "'b'"),
			},
		},
	}

	testLRAutomaton(t, expectedStates, automaton)
}

func TestBuildLR0AutomatonIsDeterministic(t *testing.T) {
	src := `
expr := expr '+' term | term
term := term '*' factor | factor
factor := '(' expr ')' | IDENTIFIER
`

	stateNums := func() map[string]stateNum {
		t.Helper()

		gram, err := Load(strings.NewReader(src))
		if err != nil {
			t.Fatal(err)
		}
		automaton, err := BuildLR0Automaton(gram)
		if err != nil {
			t.Fatal(err)
		}
		nums := map[string]stateNum{}
		for id, state := range automaton.states {
			nums[id.String()] = state.num
		}
		return nums
	}

	first := stateNums()
	for i := 0; i < 10; i++ {
		again := stateNums()
		if len(again) != len(first) {
			t.Fatalf("state count changed between builds; want: %v, got: %v", len(first), len(again))
		}
		for id, num := range first {
			if again[id] != num {
				t.Fatalf("state numbering changed between builds; kernel: %v, want: %v, got: %v", id, num, again[id])
			}
		}
	}
}

func testLRAutomaton(t *testing.T, expected []*expectedLRState, automaton *LR0Automaton) {
	if len(automaton.states) != len(expected) {
		t.Errorf("state count is mismatched; want: %v, got: %v", len(expected), len(automaton.states))
	}

	for i, eState := range expected {
		t.Run(fmt.Sprintf("state #%v", i), func(t *testing.T) {
			k, err := newKernel(eState.kernelItems)
			if err != nil {
				t.Fatalf("failed to create a kernel item: %v", err)
			}

			state, ok := automaton.states[k.id]
			if !ok {
				t.Fatalf("a kernel was not found: %v", k.id)
			}

			// The state number doubles as the index in the breadth-first
			// discovery order.
			if state.num.Int() != i {
				t.Errorf("state number is mismatched; want: %v, got: %v", i, state.num)
			}

			// test look-ahead symbols
			{
				if len(state.kernel.items) != len(eState.kernelItems) {
					t.Errorf("kernels is mismatched; want: %v, got: %v", len(eState.kernelItems), len(state.kernel.items))
				}
				for _, eKItem := range eState.kernelItems {
					var kItem *lrItem
					for _, it := range state.kernel.items {
						if it.id != eKItem.id {
							continue
						}
						kItem = it
						break
					}
					if kItem == nil {
						t.Fatalf("kernel item not found: %v", eKItem.id)
					}

					if len(kItem.lookAhead.symbols) != len(eKItem.lookAhead.symbols) {
						t.Errorf("look-ahead symbols are mismatched; want: %v symbols, got: %v symbols", len(eKItem.lookAhead.symbols), len(kItem.lookAhead.symbols))
					}

					for eSym := range eKItem.lookAhead.symbols {
						if _, ok := kItem.lookAhead.symbols[eSym]; !ok {
							t.Errorf("look-ahead symbol not found: %v", eSym)
						}
					}
				}
			}

			// test next states
			{
				if len(state.next) != len(eState.nextStates) {
					t.Errorf("next state count is mismatched; want: %v, got: %v", len(eState.nextStates), len(state.next))
				}
				for eSym, eKItems := range eState.nextStates {
					nextStateKernel, err := newKernel(eKItems)
					if err != nil {
						t.Fatalf("failed to create a kernel item: %v", err)
					}
					nextState, ok := state.next[eSym]
					if !ok {
						t.Fatalf("next state was not found; state: %v, symbol: %v", state.id, eSym)
					}
					if nextState != nextStateKernel.id {
						t.Fatalf("a kernel ID of the next state is mismatched; want: %v, got: %v", nextStateKernel.id, nextState)
					}
				}
			}

			// test reducible productions
			{
				if len(state.reducible) != len(eState.reducibleProds) {
					t.Errorf("reducible production count is mismatched; want: %v, got: %v", len(eState.reducibleProds), len(state.reducible))
				}
				for _, eProd := range eState.reducibleProds {
					if _, ok := state.reducible[eProd.id]; !ok {
						t.Errorf("reducible production was not found: %v", eProd.id)
					}
				}

				if len(state.emptyProdItems) != len(eState.emptyProdItems) {
					t.Errorf("empty production item is mismatched; want: %v, got: %v", len(eState.emptyProdItems), len(state.emptyProdItems))
				}
				for _, eItem := range eState.emptyProdItems {
					found := false
					for _, item := range state.emptyProdItems {
						if item.id != eItem.id {
							continue
						}
						found = true
						break
					}
					if !found {
						t.Errorf("empty production item not found: %v", eItem.id)
					}
				}
			}
		})
	}
}
