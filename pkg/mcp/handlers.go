// Package mcp exposes contract validation over the Model Context
// Protocol so agents can lint contracts and evaluate constraint
// expressions without shelling out.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kvarta-studio/kontra/pkg/batch"
	"github.com/kvarta-studio/kontra/pkg/dsl"
	"github.com/kvarta-studio/kontra/pkg/glossary"
	"github.com/kvarta-studio/kontra/pkg/lint"
	"github.com/kvarta-studio/kontra/pkg/schema"
)

// HandleLint implements the kontra/lint MCP tool.
func HandleLint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	sch, err := schema.Builtin()
	if err != nil {
		return errorResult(fmt.Sprintf("builtin schema: %s", err)), nil
	}

	var gl *glossary.Glossary
	if glPath, _ := args["glossary"].(string); glPath != "" {
		gl, err = glossary.LoadFile(glPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
	}

	res := lint.New(sch, gl).LintFile(path)
	return jsonResult(res)
}

// HandleBatch implements the kontra/batch MCP tool.
func HandleBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	var filter *batch.Filter
	if src, _ := args["filter"].(string); src != "" {
		var err error
		filter, err = batch.NewFilter(src)
		if err != nil {
			return errorResult(err.Error()), nil
		}
	}

	sch, err := schema.Builtin()
	if err != nil {
		return errorResult(fmt.Sprintf("builtin schema: %s", err)), nil
	}

	runner := batch.NewRunner(lint.New(sch, nil), sch, batch.Options{Filter: filter})
	rep, err := runner.Run(ctx, []string{path})
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(rep)
}

// HandleExpr implements the kontra/expr MCP tool.
func HandleExpr(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	src, _ := args["expr"].(string)
	if src == "" {
		return errorResult("expr argument is required"), nil
	}

	node, err := dsl.Parse(src)
	if err != nil {
		return errorResult(fmt.Sprintf("parse error: %s", err)), nil
	}

	raw := make(map[string]any)
	if varsJSON, _ := args["vars"].(string); varsJSON != "" {
		if err := json.Unmarshal([]byte(varsJSON), &raw); err != nil {
			return errorResult(fmt.Sprintf("vars must be a JSON object: %s", err)), nil
		}
	}
	binding, err := dsl.BindAny(raw)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	ok, err := dsl.Eval(node, binding)
	if err != nil {
		return errorResult(fmt.Sprintf("eval error: %s", err)), nil
	}
	return jsonResult(map[string]any{
		"expr":   src,
		"ast":    node.String(),
		"idents": dsl.Idents(node),
		"result": ok,
	})
}

// HandleSchema implements the kontra/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := schema.Generate()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
