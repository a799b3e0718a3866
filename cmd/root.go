package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mdocgo",
	Short: "A document-processing pipeline for an extended Markdown dialect",
	Long: `mdocgo tokenizes Markdown embedding a structured {% %} tag/expression
language, builds an AST, resolves expressions against a variable/function
environment, and transforms the result through a schema into HTML.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {}
