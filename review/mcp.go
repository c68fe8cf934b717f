package review

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gitpal-dev/gitpal/kit"
)

// RegisterMCP registers the review operations as MCP tools on srv.
func RegisterMCP(srv *mcp.Server, s *Service) {
	registerAnalyzeTool(srv, s)
	registerPreviewFixTool(srv, s)
	registerFileContentTool(srv, s)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func registerAnalyzeTool(srv *mcp.Server, s *Service) {
	tool := &mcp.Tool{
		Name:        "review_analyze",
		Description: "Clone a GitHub repository and lint its source files. Returns the findings and the path of the clone kept for follow-up fix requests.",
		InputSchema: inputSchema(map[string]any{
			"repo_url": map[string]any{"type": "string", "description": "GitHub repository URL (https or ssh)"},
			"token":    map[string]any{"type": "string", "description": "GitHub access token for private repositories"},
		}, []string{"repo_url"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Analyze(ctx, *req.(*AnalyzeRequest))
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r AnalyzeRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func registerPreviewFixTool(srv *mcp.Server, s *Service) {
	tool := &mcp.Tool{
		Name:        "review_preview_fix",
		Description: "Generate a fix for one linter finding without writing it. Returns the proposed file content and a line diff against the current file.",
		InputSchema: inputSchema(map[string]any{
			"file_path":   map[string]any{"type": "string", "description": "Absolute path of the file inside an analysis clone"},
			"smell_code":  map[string]any{"type": "string", "description": "Linter message code, e.g. C0114"},
			"line_number": map[string]any{"type": "integer", "description": "Line the finding points at"},
		}, []string{"file_path", "smell_code"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.PreviewFix(ctx, *req.(*FixRequest))
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r FixRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

type fileContentReq struct {
	FilePath string `json:"file_path"`
}

func registerFileContentTool(srv *mcp.Server, s *Service) {
	tool := &mcp.Tool{
		Name:        "review_file_content",
		Description: "Read a file inside an analysis clone.",
		InputSchema: inputSchema(map[string]any{
			"file_path": map[string]any{"type": "string", "description": "Absolute path of the file inside an analysis clone"},
		}, []string{"file_path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		content, err := s.FileContent(ctx, req.(*fileContentReq).FilePath)
		if err != nil {
			return nil, err
		}
		return map[string]string{"content": content}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r fileContentReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
