package mcp

import (
	"context"

	"adte.com/adte/meta-ads-mcp/internal/server"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type addTokenInput struct {
	Name     string `json:"name" jsonschema:"friendly name for the token, e.g. the client or business name"`
	Token    string `json:"token" jsonschema:"Meta Graph API access token"`
	Validate *bool  `json:"validate,omitempty" jsonschema:"check the token against /me before storing it (default true)"`
}

type tokenNameInput struct {
	Name string `json:"name" jsonschema:"name the token was registered under"`
}

// HandleAddAccessToken registers a named access token
func (h *MCPHandler) HandleAddAccessToken(ctx context.Context, req *sdk.CallToolRequest, input addTokenInput) (*sdk.CallToolResult, any, error) {
	validate := input.Validate == nil || *input.Validate
	reg, err := h.srv.RegisterToken(h.callContext(ctx, req), server.RegisterTokenParams{
		Name:     input.Name,
		Token:    input.Token,
		Validate: validate,
	})
	if err != nil {
		return h.failure("add_access_token", err)
	}
	return h.textResult(reg)
}

// HandleSwitchAccessToken makes a registered token active
func (h *MCPHandler) HandleSwitchAccessToken(ctx context.Context, _ *sdk.CallToolRequest, input tokenNameInput) (*sdk.CallToolResult, any, error) {
	if err := h.srv.SwitchToken(input.Name); err != nil {
		return h.failure("switch_access_token", err)
	}
	return h.textResult(h.srv.ListTokens())
}

// HandleRemoveAccessToken forgets a registered token
func (h *MCPHandler) HandleRemoveAccessToken(ctx context.Context, _ *sdk.CallToolRequest, input tokenNameInput) (*sdk.CallToolResult, any, error) {
	list, err := h.srv.RemoveToken(input.Name)
	if err != nil {
		return h.failure("remove_access_token", err)
	}
	return h.textResult(list)
}

// HandleListAccessTokens lists registered token names
func (h *MCPHandler) HandleListAccessTokens(ctx context.Context, _ *sdk.CallToolRequest, _ struct{}) (*sdk.CallToolResult, any, error) {
	return h.textResult(h.srv.ListTokens())
}

func (h *MCPHandler) registerTokenTools(mcpServer *sdk.Server) {
	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "add_access_token",
		Description: "Register a named Meta access token. The first registered token becomes active.",
	}, h.HandleAddAccessToken)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "switch_access_token",
		Description: "Make a registered access token the active one",
	}, h.HandleSwitchAccessToken)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "remove_access_token",
		Description: "Forget a registered access token",
	}, h.HandleRemoveAccessToken)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "list_access_tokens",
		Description: "List registered access token names and which one is active",
	}, h.HandleListAccessTokens)
}
