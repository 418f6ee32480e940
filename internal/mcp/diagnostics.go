package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type callLogInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of entries, newest first (default 20, max 200)"`
}

func (h *MCPHandler) HandleGetAPIUsage(ctx context.Context, _ *sdk.CallToolRequest, _ struct{}) (*sdk.CallToolResult, any, error) {
	return h.textResult(h.srv.Usage())
}

func (h *MCPHandler) HandleGetAPICallLog(ctx context.Context, _ *sdk.CallToolRequest, input callLogInput) (*sdk.CallToolResult, any, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	entries, err := h.srv.RecentCalls(ctx, limit)
	if err != nil {
		return h.failure("get_api_call_log", err)
	}
	return h.textResult(entries)
}

func (h *MCPHandler) registerDiagnosticTools(mcpServer *sdk.Server) {
	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "get_api_usage",
		Description: "Show the last reported Graph API usage and the current throttle delay",
	}, h.HandleGetAPIUsage)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "get_api_call_log",
		Description: "List recent Graph API calls with status, attempts and error kind",
	}, h.HandleGetAPICallLog)
}
