package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	verr "github.com/mura6/glade/error"
	"github.com/mura6/glade/grammar"
)

var checkFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "check",
		Short:   "Check a grammar and build its parsing table",
		Example: `  glade check grammar.bnf -o grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCheck,
	}
	checkFlags.output = cmd.Flags().StringP("output", "o", "", "report file path (default none)")
	rootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	gram, automaton, tab, conflicts, err := buildTable(args[0])
	if err != nil {
		return err
	}

	pterm.Info.Printf("%v states, %v conflicts\n", automaton.StateCount(), len(conflicts))
	if len(conflicts) > 0 {
		grammar.DumpConflicts(os.Stdout, gram, conflicts)
	}

	if *checkFlags.output != "" {
		report, err := grammar.BuildReport(gram, automaton, tab, conflicts)
		if err != nil {
			return err
		}
		err = writeReport(report, *checkFlags.output)
		if err != nil {
			return fmt.Errorf("Cannot write the report: %w", err)
		}
	}

	return nil
}

func readGrammar(path string) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	gram, err := grammar.Load(f)
	if err != nil {
		if specErrs, ok := err.(verr.SpecErrors); ok {
			for _, e := range specErrs {
				e.FilePath = path
				e.SourceName = path
			}
		}
		return nil, err
	}
	return gram, nil
}

func buildTable(path string) (*grammar.Grammar, *grammar.LR0Automaton, *grammar.ParsingTable, []grammar.Conflict, error) {
	gram, err := readGrammar(path)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	automaton, err := grammar.BuildLR0Automaton(gram)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	tab, conflicts, err := grammar.BuildSLRTable(gram, automaton)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return gram, automaton, tab, conflicts, nil
}

func writeReport(report *grammar.Report, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "%v\n", string(b))

	return nil
}
