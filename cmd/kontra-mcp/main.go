// Package main provides the kontra-mcp binary, the MCP server exposing
// contract validation to AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	kmcp "github.com/kvarta-studio/kontra/pkg/mcp"
)

var version = "dev"

func main() {
	s := kmcp.NewServer(version)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
