// ABOUTME: Standalone entry point for the guia MCP server with stdio transport
// ABOUTME: Equivalent to "guia serve"; accepts the same global flags
package main

import (
	"fmt"
	"os"

	"github.com/harper/guia/cmd/guia/commands"
)

func main() {
	root := commands.NewRootCmd()
	root.SetArgs(append([]string{"serve"}, os.Args[1:]...))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
