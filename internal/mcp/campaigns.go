package mcp

import (
	"context"

	"adte.com/adte/meta-ads-mcp/internal/server"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type listCampaignsInput struct {
	AccountID string   `json:"account_id" jsonschema:"ad account id"`
	Statuses  []string `json:"statuses,omitempty" jsonschema:"effective statuses to include, e.g. ACTIVE, PAUSED"`
	Fields    []string `json:"fields,omitempty" jsonschema:"Graph API fields to return"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of campaigns (default 25, max 1000)"`
}

type objectInput struct {
	ID     string   `json:"id" jsonschema:"Graph API object id"`
	Fields []string `json:"fields,omitempty" jsonschema:"Graph API fields to return"`
}

type createCampaignInput struct {
	AccountID           string   `json:"account_id" jsonschema:"ad account id"`
	Name                string   `json:"name" jsonschema:"campaign name"`
	Objective           string   `json:"objective" jsonschema:"campaign objective, e.g. OUTCOME_TRAFFIC"`
	Status              string   `json:"status,omitempty" jsonschema:"initial status (default PAUSED)"`
	SpecialAdCategories []string `json:"special_ad_categories,omitempty" jsonschema:"special ad categories, empty for none"`
	DailyBudget         int64    `json:"daily_budget,omitempty" jsonschema:"daily budget in the account currency's minor unit"`
	LifetimeBudget      int64    `json:"lifetime_budget,omitempty" jsonschema:"lifetime budget in the account currency's minor unit"`
	BidStrategy         string   `json:"bid_strategy,omitempty" jsonschema:"bid strategy, e.g. LOWEST_COST_WITHOUT_CAP"`
}

type updateCampaignInput struct {
	CampaignID     string `json:"campaign_id" jsonschema:"campaign id"`
	Name           string `json:"name,omitempty" jsonschema:"new name"`
	Status         string `json:"status,omitempty" jsonschema:"new status: ACTIVE, PAUSED or ARCHIVED"`
	DailyBudget    int64  `json:"daily_budget,omitempty" jsonschema:"new daily budget in minor units"`
	LifetimeBudget int64  `json:"lifetime_budget,omitempty" jsonschema:"new lifetime budget in minor units"`
	BidStrategy    string `json:"bid_strategy,omitempty" jsonschema:"new bid strategy"`
}

type deleteInput struct {
	ID string `json:"id" jsonschema:"id of the campaign, ad set or ad to delete"`
}

func (h *MCPHandler) HandleGetCampaigns(ctx context.Context, req *sdk.CallToolRequest, input listCampaignsInput) (*sdk.CallToolResult, any, error) {
	campaigns, err := h.srv.ListCampaigns(h.callContext(ctx, req), server.ListCampaignsParams{
		AccountID: input.AccountID,
		Statuses:  input.Statuses,
		Fields:    input.Fields,
		Limit:     input.Limit,
	})
	if err != nil {
		return h.failure("get_campaigns", err)
	}
	return h.listResult(campaigns)
}

func (h *MCPHandler) HandleGetCampaign(ctx context.Context, req *sdk.CallToolRequest, input objectInput) (*sdk.CallToolResult, any, error) {
	campaign, err := h.srv.GetCampaign(h.callContext(ctx, req), input.ID, input.Fields)
	if err != nil {
		return h.failure("get_campaign", err)
	}
	return h.textResult(campaign)
}

func (h *MCPHandler) HandleCreateCampaign(ctx context.Context, req *sdk.CallToolRequest, input createCampaignInput) (*sdk.CallToolResult, any, error) {
	created, err := h.srv.CreateCampaign(h.callContext(ctx, req), server.CreateCampaignParams{
		AccountID:           input.AccountID,
		Name:                input.Name,
		Objective:           input.Objective,
		Status:              input.Status,
		SpecialAdCategories: input.SpecialAdCategories,
		DailyBudget:         input.DailyBudget,
		LifetimeBudget:      input.LifetimeBudget,
		BidStrategy:         input.BidStrategy,
	})
	if err != nil {
		return h.failure("create_campaign", err)
	}
	return h.textResult(created)
}

func (h *MCPHandler) HandleUpdateCampaign(ctx context.Context, req *sdk.CallToolRequest, input updateCampaignInput) (*sdk.CallToolResult, any, error) {
	result, err := h.srv.UpdateCampaign(h.callContext(ctx, req), server.UpdateCampaignParams{
		CampaignID:     input.CampaignID,
		Name:           input.Name,
		Status:         input.Status,
		DailyBudget:    input.DailyBudget,
		LifetimeBudget: input.LifetimeBudget,
		BidStrategy:    input.BidStrategy,
	})
	if err != nil {
		return h.failure("update_campaign", err)
	}
	return h.textResult(result)
}

func (h *MCPHandler) HandleDeleteCampaign(ctx context.Context, req *sdk.CallToolRequest, input deleteInput) (*sdk.CallToolResult, any, error) {
	result, err := h.srv.DeleteObject(h.callContext(ctx, req), input.ID)
	if err != nil {
		return h.failure("delete_campaign", err)
	}
	return h.textResult(result)
}

func (h *MCPHandler) registerCampaignTools(mcpServer *sdk.Server) {
	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "get_campaigns",
		Description: "List campaigns of an ad account",
	}, h.HandleGetCampaigns)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "get_campaign",
		Description: "Get details of a campaign",
	}, h.HandleGetCampaign)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "create_campaign",
		Description: "Create a campaign (PAUSED unless a status is given)",
	}, h.HandleCreateCampaign)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "update_campaign",
		Description: "Update name, status, budget or bid strategy of a campaign",
	}, h.HandleUpdateCampaign)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "delete_campaign",
		Description: "Delete a campaign, ad set or ad",
	}, h.HandleDeleteCampaign)
}
