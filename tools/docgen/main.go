// Package main generates CLI reference documentation from the product-search
// and psc command trees.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	pscmd "github.com/donaldgifford/product-search/cmd/product-search/cmd"
	psccmd "github.com/donaldgifford/product-search/cmd/psc/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated markdown")
	flag.Parse()

	trees := []struct {
		dir  string
		root *cobra.Command
	}{
		{dir: "product-search", root: pscmd.Root()},
		{dir: "psc", root: psccmd.Root()},
	}

	for _, tree := range trees {
		dir := filepath.Join(*output, tree.dir)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Fatalf("creating output directory: %v", err)
		}

		tree.root.DisableAutoGenTag = true
		if err := doc.GenMarkdownTree(tree.root, dir); err != nil {
			log.Fatalf("generating %s docs: %v", tree.dir, err)
		}
	}

	fmt.Printf("CLI docs generated in %s/\n", *output)
}
