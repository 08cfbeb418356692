package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mura6/glade/pp"
	"github.com/mura6/glade/token"
)

func init() {
	cmd := &cobra.Command{
		Use:     "structure",
		Short:   "Print the preprocessor-directive structure of source text",
		Example: `  glade structure main.c`,
		Args:    cobra.ExactArgs(1),
		RunE:    runStructure,
	}
	rootCmd.AddCommand(cmd)
}

func runStructure(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	stream := token.Lex(string(src), token.DefaultOptions())
	st, errs := pp.Parse(stream)
	st.Dump(os.Stdout)

	if len(errs) > 0 {
		for _, e := range errs {
			e.FilePath = args[0]
			e.SourceName = args[0]
		}
		return errs
	}

	return nil
}
