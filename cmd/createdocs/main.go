package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/fatih/color"
	"github.com/xhad/minirag/pkg/corpus"
)

func main() {
	docsDir := flag.String("docs-dir", "docs", "Directory to write sample documents into")
	flag.Parse()

	created, err := corpus.GenerateSamples(*docsDir)
	if err != nil {
		log.Fatal(err)
	}

	for _, path := range created {
		fmt.Printf("Created: %s\n", path)
	}
	color.Green("\nSuccessfully created %d sample documents in %q\n", len(created), *docsDir)
}
