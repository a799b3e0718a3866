package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdocgo/mdocgo/markdoc"
)

func main() {
	// Paths are relative to the repository root
	inputs, err := filepath.Glob("markdoc/testdata/*.md")
	if err != nil {
		log.Fatalf("Failed to glob files: %v", err)
	}

	for _, inputFile := range inputs {
		outputFile := strings.TrimSuffix(inputFile, ".md") + "_golden.html"

		fmt.Printf("Processing %s -> %s\n", inputFile, outputFile)
		inputBytes, err := os.ReadFile(inputFile)
		if err != nil {
			log.Printf("Failed to read input file %s: %v", inputFile, err)
			continue
		}

		doc := markdoc.Parse(inputBytes)
		cfg := markdoc.DefaultConfig()
		markdoc.ResolveNode(doc, cfg)
		renderable := markdoc.TransformNode(doc, cfg)

		var out strings.Builder
		if err := markdoc.RenderHTML(&out, renderable); err != nil {
			log.Printf("Render failed for %s: %v", inputFile, err)
			continue
		}

		if err := os.WriteFile(outputFile, []byte(out.String()), 0644); err != nil {
			log.Printf("Failed to write output file %s: %v", outputFile, err)
			continue
		}
	}

	fmt.Println("Done. Golden files updated.")
}
