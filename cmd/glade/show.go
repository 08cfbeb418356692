package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/mura6/glade/grammar"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a report in a readable format",
		Example: `  glade show grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	err = writeReadableReport(os.Stdout, report)
	if err != nil {
		return err
	}

	return nil
}

func readReport(path string) (*grammar.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &grammar.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

const reportTemplate = `# Conflicts

{{ printConflictSummary . }}

# Terminals

{{ range slice .Terminals 1 -}}
{{ printTerminal . }}
{{ end }}
# Productions

{{ range slice .Productions 1 -}}
{{ printProduction . }}
{{ end }}
# States
{{ range .States }}
## State {{ .Number }}

{{ range .Kernel -}}
{{ printItem . }}
{{ end }}
{{ range .Shift -}}
{{ printShift . }}
{{ end -}}
{{ range .Reduce -}}
{{ printReduce . }}
{{ end -}}
{{ range .GoTo -}}
{{ printGoTo . }}
{{ end }}
{{ range .SRConflict -}}
{{ printSRConflict . }}
{{ end -}}
{{ range .RRConflict -}}
{{ printRRConflict . }}
{{ end -}}
{{ end }}`

func writeReadableReport(w io.Writer, report *grammar.Report) error {
	termName := func(sym int) string {
		return report.Terminals[sym].Name
	}

	nonTermName := func(sym int) string {
		return report.NonTerminals[sym].Name
	}

	printRHS := func(b *strings.Builder, rhs []int) {
		if len(rhs) == 0 {
			fmt.Fprintf(b, " ε")
			return
		}
		for _, e := range rhs {
			if e > 0 {
				fmt.Fprintf(b, " %v", termName(e))
			} else {
				fmt.Fprintf(b, " %v", nonTermName(e*-1))
			}
		}
	}

	fns := template.FuncMap{
		"printConflictSummary": func(report *grammar.Report) string {
			var count int
			for _, s := range report.States {
				count += len(s.SRConflict)
				count += len(s.RRConflict)
			}

			if count == 1 {
				return fmt.Sprintf("%v conflict occurred and was resolved by the static policy.", count)
			} else if count > 1 {
				return fmt.Sprintf("%v conflicts occurred and were resolved by the static policy.", count)
			}
			return "No conflict"
		},
		"printTerminal": func(term *grammar.Terminal) string {
			return fmt.Sprintf("%4v %v", term.Number, term.Name)
		},
		"printProduction": func(prod *grammar.Production) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			printRHS(&b, prod.RHS)
			return fmt.Sprintf("%4v %v", prod.Number, b.String())
		},
		"printItem": func(item *grammar.Item) string {
			prod := report.Productions[item.Production]

			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			for i, e := range prod.RHS {
				if i == item.Dot {
					fmt.Fprintf(&b, " ・")
				}
				if e > 0 {
					fmt.Fprintf(&b, " %v", termName(e))
				} else {
					fmt.Fprintf(&b, " %v", nonTermName(e*-1))
				}
			}
			if item.Dot >= len(prod.RHS) {
				fmt.Fprintf(&b, " ・")
			}

			return fmt.Sprintf("%4v %v", prod.Number, b.String())
		},
		"printShift": func(tran *grammar.Transition) string {
			return fmt.Sprintf("shift  %4v on %v", tran.State, termName(tran.Symbol))
		},
		"printReduce": func(reduce *grammar.Reduce) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%v", termName(reduce.LookAhead[0]))
			for _, a := range reduce.LookAhead[1:] {
				fmt.Fprintf(&b, ", %v", termName(a))
			}
			return fmt.Sprintf("reduce %4v on %v", reduce.Production, b.String())
		},
		"printGoTo": func(tran *grammar.Transition) string {
			return fmt.Sprintf("goto   %4v on %v", tran.State, nonTermName(tran.Symbol))
		},
		"printSRConflict": func(sr *grammar.SRConflict) string {
			var adopted string
			switch {
			case sr.AdoptedState != nil:
				adopted = fmt.Sprintf("shift %v", *sr.AdoptedState)
			case sr.AdoptedProduction != nil:
				adopted = fmt.Sprintf("reduce %v", *sr.AdoptedProduction)
			}
			return fmt.Sprintf("shift/reduce conflict (shift %v, reduce %v) on %v: %v adopted because a shift always wins", sr.State, sr.Production, termName(sr.Symbol), adopted)
		},
		"printRRConflict": func(rr *grammar.RRConflict) string {
			return fmt.Sprintf("reduce/reduce conflict (%v, %v) on %v: reduce %v adopted because the production declared earliest wins", rr.Production1, rr.Production2, termName(rr.Symbol), rr.AdoptedProduction)
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}

	err = tmpl.Execute(w, report)
	if err != nil {
		return err
	}

	return nil
}
