// Command padctl inspects and repairs padlink state from the command line.
// It works directly on the data directory, so stop the server first when the
// command touches the journal.
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
