// Package main provides the axon CLI.
package main

import (
	"fmt"
	"os"

	"github.com/axonvm/axon/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
