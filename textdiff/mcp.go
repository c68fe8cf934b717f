package textdiff

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gitpal-dev/gitpal/kit"
)

// RegisterMCP registers the diff engine as MCP tools on srv.
func RegisterMCP(srv *mcp.Server) {
	registerDiffTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

type diffReq struct {
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
	Name   string          `json:"name"`
}

func registerDiffTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "textdiff_diff",
		Description: "Compute a line-oriented diff between two text documents. Returns one of: invalid_input, no_differences, computation_failed, or a diff with classified line records and counts.",
		InputSchema: inputSchema(map[string]any{
			"before": map[string]any{"description": "Old version of the document"},
			"after":  map[string]any{"description": "New version of the document"},
			"name":   map[string]any{"type": "string", "description": "Display label for the document"},
		}, []string{"before", "after", "name"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*diffReq)
		return Diff(ValueFromJSON(r.Before), ValueFromJSON(r.After), r.Name), nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r diffReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
