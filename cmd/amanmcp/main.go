// Package main provides the entry point for the mcp-vector-search CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/mcp-vector-search/cmd/amanmcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
