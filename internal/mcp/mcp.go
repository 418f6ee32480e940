package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"adte.com/adte/meta-ads-mcp/internal/api"
	"adte.com/adte/meta-ads-mcp/internal/auth"
	"adte.com/adte/meta-ads-mcp/internal/graph"
	"adte.com/adte/meta-ads-mcp/internal/server"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultTokenHeader carries a per-request access token on the HTTP transport.
const DefaultTokenHeader = "X-Meta-Access-Token"

// MCPHandler wraps the server and provides MCP tool handlers
type MCPHandler struct {
	srv         *server.Server
	tokenHeader string
}

// NewMCPHandler creates a new MCP handler
func NewMCPHandler(srv *server.Server, tokenHeader string) *MCPHandler {
	if tokenHeader == "" {
		tokenHeader = DefaultTokenHeader
	}
	return &MCPHandler{srv: srv, tokenHeader: tokenHeader}
}

// NewServer builds an MCP server with every tool registered.
func NewServer(h *MCPHandler, version string) *sdk.Server {
	impl := &sdk.Implementation{
		Name:    "meta-ads-mcp",
		Version: version,
	}
	mcpServer := sdk.NewServer(impl, nil)
	h.RegisterTools(mcpServer)
	return mcpServer
}

// callContext scopes a per-request token override to this tool call.
func (h *MCPHandler) callContext(ctx context.Context, req *sdk.CallToolRequest) context.Context {
	if req == nil || req.Extra == nil || req.Extra.Header == nil {
		return ctx
	}
	if token := strings.TrimSpace(req.Extra.Header.Get(h.tokenHeader)); token != "" {
		return auth.WithToken(ctx, token)
	}
	return ctx
}

func (h *MCPHandler) textResult(v any) (*sdk.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func (h *MCPHandler) listResult(items []api.Object) (*sdk.CallToolResult, any, error) {
	if items == nil {
		items = []api.Object{}
	}
	return h.textResult(api.ListResponse{Count: len(items), Data: items})
}

func (h *MCPHandler) errorResult(errResp api.ErrorResponse) (*sdk.CallToolResult, any, error) {
	data, err := json.Marshal(errResp)
	if err != nil {
		return nil, nil, err
	}
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{
			&sdk.TextContent{Text: string(data)},
		},
	}, nil, nil
}

// failure renders validation and Graph API errors as tool errors. Anything
// else is returned to the SDK as is.
func (h *MCPHandler) failure(tool string, err error) (*sdk.CallToolResult, any, error) {
	var valErr server.ValidationError
	if errors.As(err, &valErr) {
		return h.errorResult(api.ErrorResponse{Error: valErr.Message, Code: valErr.Code})
	}

	var graphErr *graph.Error
	if errors.As(err, &graphErr) {
		h.srv.Logger.Warn("graph api call failed", "tool", tool, "kind", graphErr.Kind, "code", graphErr.Code, "error", err)
		return h.errorResult(api.ErrorResponse{
			Error:   err.Error(),
			Code:    string(graphErr.Kind),
			Details: graphErr.Hint(),
		})
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return h.errorResult(api.ErrorResponse{Error: err.Error(), Code: "CANCELED"})
	}

	h.srv.Logger.Error("tool failed", "tool", tool, "error", err)
	return nil, nil, err
}

// RegisterTools registers all MCP tools with the server
func (h *MCPHandler) RegisterTools(mcpServer *sdk.Server) {
	h.registerTokenTools(mcpServer)
	h.registerAccountTools(mcpServer)
	h.registerCampaignTools(mcpServer)
	h.registerDeliveryTools(mcpServer)
	h.registerCreativeTools(mcpServer)
	h.registerDiagnosticTools(mcpServer)
}
