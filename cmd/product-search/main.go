// Package main is the entry point for product-search.
package main

import (
	"os"

	"github.com/donaldgifford/product-search/cmd/product-search/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
