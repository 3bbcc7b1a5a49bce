// Command surfdeck is the CLI entry point: boot a presentation module,
// convert slides, present a deck, or serve a browser bundle.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
