// Package main provides the gauntlet-mcp binary — MCP server for AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	gmcp "github.com/praxislabs/gauntlet/pkg/ecosystem/mcp"
)

var version = "dev"

func main() {
	s, err := gmcp.NewServer(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
