package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mura6/glade/grammar"
)

func init() {
	cmd := &cobra.Command{
		Use:     "grammar",
		Short:   "Print the rules of a grammar in canonical order",
		Example: `  glade grammar grammar.bnf`,
		Args:    cobra.ExactArgs(1),
		RunE:    runGrammar,
	}
	rootCmd.AddCommand(cmd)
}

func runGrammar(cmd *cobra.Command, args []string) error {
	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}

	grammar.DumpGrammar(os.Stdout, gram)

	return nil
}
