package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "glade",
	Short: "Inspect a grammar and the structure of source text",
	Long: `glade provides two features:
- Builds an SLR(1) parsing table from a BNF grammar and reports its
  states and conflicts.
- Tokenizes source text and shows its preprocessor-directive structure.
  This feature is primarily aimed at inspecting malformed source.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err)
		return err
	}
	return nil
}
