package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
	"github.com/spf13/cobra"

	"github.com/mdocgo/mdocgo/markdoc"
)

// renderCmd replaces the teacher's "tokenize" subcommand with the
// analogous verb for this pipeline: run the full parse/resolve/
// transform/render chain over a file and print the HTML, mirroring
// main.go's tokenize-and-report style (tokenize.go's Args/Run shape).
var renderCmd = &cobra.Command{
	Use:   "render [markdoc_file]",
	Short: "Render a Markdoc-style document to HTML",
	Long:  `Render parses, resolves, and transforms a document, then writes its HTML to stdout.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runID := uuid.NewString()

		input, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("[%s] Error opening file: %v\n", runID, err)
			os.Exit(1)
		}

		doc := markdoc.Parse(input)
		cfg := markdoc.DefaultConfig()
		markdoc.ResolveNode(doc, cfg)
		renderable := markdoc.TransformNode(doc, cfg)

		var out strings.Builder
		if err := markdoc.RenderHTML(&out, renderable); err != nil {
			fmt.Printf("[%s] Error rendering: %v\n", runID, err)
			os.Exit(1)
		}

		fmt.Print(out.String())

		reportErrors(runID, doc)

		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			tokens := enc.Encode(out.String(), nil, nil)
			fmt.Fprintf(os.Stderr, "[%s] Tokens (%d)\n", runID, len(tokens))
		}
	},
}

// reportErrors walks the tree printing every recorded diagnostic,
// prefixed with the run id the way the teacher's CLI prefixes its
// Tokens/PaddedPaths report lines (tokenize.go).
func reportErrors(runID string, node *markdoc.Node) {
	for _, e := range node.Errors {
		fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", runID, e.ID, e.Message)
	}
	for _, c := range node.Children {
		reportErrors(runID, c)
	}
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
