package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type listAccountsInput struct {
	Fields []string `json:"fields,omitempty" jsonschema:"Graph API fields to return"`
	Limit  int      `json:"limit,omitempty" jsonschema:"maximum number of accounts (default 25, max 1000)"`
}

type accountInput struct {
	AccountID string   `json:"account_id" jsonschema:"ad account id, with or without the act_ prefix"`
	Fields    []string `json:"fields,omitempty" jsonschema:"Graph API fields to return"`
}

func (h *MCPHandler) HandleGetAdAccounts(ctx context.Context, req *sdk.CallToolRequest, input listAccountsInput) (*sdk.CallToolResult, any, error) {
	accounts, err := h.srv.ListAdAccounts(h.callContext(ctx, req), input.Fields, input.Limit)
	if err != nil {
		return h.failure("get_ad_accounts", err)
	}
	return h.listResult(accounts)
}

func (h *MCPHandler) HandleGetAccountInfo(ctx context.Context, req *sdk.CallToolRequest, input accountInput) (*sdk.CallToolResult, any, error) {
	account, err := h.srv.GetAccount(h.callContext(ctx, req), input.AccountID, input.Fields)
	if err != nil {
		return h.failure("get_account_info", err)
	}
	return h.textResult(account)
}

func (h *MCPHandler) HandleGetBillingInfo(ctx context.Context, req *sdk.CallToolRequest, input accountInput) (*sdk.CallToolResult, any, error) {
	billing, err := h.srv.GetBilling(h.callContext(ctx, req), input.AccountID)
	if err != nil {
		return h.failure("get_billing_info", err)
	}
	return h.textResult(billing)
}

func (h *MCPHandler) registerAccountTools(mcpServer *sdk.Server) {
	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "get_ad_accounts",
		Description: "List ad accounts the current access token can manage",
	}, h.HandleGetAdAccounts)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "get_account_info",
		Description: "Get details of an ad account",
	}, h.HandleGetAccountInfo)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "get_billing_info",
		Description: "Get spend cap, amount spent, balance and funding source of an ad account",
	}, h.HandleGetBillingInfo)
}
