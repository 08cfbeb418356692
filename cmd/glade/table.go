package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mura6/glade/grammar"
)

func init() {
	cmd := &cobra.Command{
		Use:     "table",
		Short:   "Print the SLR(1) parsing table of a grammar",
		Example: `  glade table grammar.bnf`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTable,
	}
	rootCmd.AddCommand(cmd)
}

func runTable(cmd *cobra.Command, args []string) error {
	gram, _, tab, conflicts, err := buildTable(args[0])
	if err != nil {
		return err
	}

	grammar.DumpTable(os.Stdout, gram, tab)
	if len(conflicts) > 0 {
		grammar.DumpConflicts(os.Stdout, gram, conflicts)
	}

	return nil
}
