package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing the contract validation
// tools to AI agents.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"kontra",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("kontra/lint",
			mcp.WithDescription("Validate a single Stage A contract JSON file and return its findings"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the contract JSON file")),
			mcp.WithString("glossary", mcp.Description("Optional glossary file for term cross-checks")),
		),
		HandleLint,
	)

	s.AddTool(
		mcp.NewTool("kontra/batch",
			mcp.WithDescription("Validate every contract under a directory and return the aggregated summary"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Directory to scan for contracts")),
			mcp.WithString("filter", mcp.Description("Metadata filter expression, e.g. module_type == \"PROCESS\"")),
		),
		HandleBatch,
	)

	s.AddTool(
		mcp.NewTool("kontra/expr",
			mcp.WithDescription("Parse and evaluate a constraint DSL expression against a JSON variable binding"),
			mcp.WithString("expr", mcp.Required(), mcp.Description("Constraint expression, e.g. ecu_enabled => framing_tightness >= 0.25")),
			mcp.WithString("vars", mcp.Description("JSON object binding variable names to values")),
		),
		HandleExpr,
	)

	s.AddTool(
		mcp.NewTool("kontra/schema",
			mcp.WithDescription("Export the built-in Stage A contract JSON Schema"),
		),
		HandleSchema,
	)

	return s
}
