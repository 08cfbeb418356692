package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mura6/glade/grammar"
)

func init() {
	cmd := &cobra.Command{
		Use:     "graph",
		Short:   "Print the LR(0) automaton of a grammar",
		Example: `  glade graph grammar.bnf`,
		Args:    cobra.ExactArgs(1),
		RunE:    runGraph,
	}
	rootCmd.AddCommand(cmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}
	automaton, err := grammar.BuildLR0Automaton(gram)
	if err != nil {
		return err
	}

	grammar.DumpAutomaton(os.Stdout, gram, automaton)

	return nil
}
