package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mura6/glade/token"
)

var tokensFlags = struct {
	plain        *bool
	dollarIdents *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "tokens",
		Short:   "Lex source text and print its token stream",
		Example: `  glade tokens main.c`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTokens,
	}
	tokensFlags.plain = cmd.Flags().Bool("plain", false, "lex with no keywords and no line comments")
	tokensFlags.dollarIdents = cmd.Flags().Bool("dollar-idents", false, "allow '$' in identifiers")
	rootCmd.AddCommand(cmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	opts := token.DefaultOptions()
	if *tokensFlags.plain {
		opts = token.Options{}
	}
	if *tokensFlags.dollarIdents {
		opts.DollarIdents = true
	}

	stream := token.Lex(string(src), opts)
	stream.Dump(os.Stdout)

	return nil
}
