package mcp

import (
	"context"

	"adte.com/adte/meta-ads-mcp/internal/server"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type listChildrenInput struct {
	AccountID  string   `json:"account_id,omitempty" jsonschema:"ad account id"`
	CampaignID string   `json:"campaign_id,omitempty" jsonschema:"campaign id, takes precedence over account_id"`
	AdSetID    string   `json:"adset_id,omitempty" jsonschema:"ad set id, takes precedence over campaign_id (ads only)"`
	Fields     []string `json:"fields,omitempty" jsonschema:"Graph API fields to return"`
	Limit      int      `json:"limit,omitempty" jsonschema:"maximum number of items (default 25, max 1000)"`
}

type insightsInput struct {
	ObjectID   string   `json:"object_id" jsonschema:"ad account, campaign, ad set or ad id"`
	DatePreset string   `json:"date_preset,omitempty" jsonschema:"date preset, e.g. last_7d (default last_30d)"`
	Since      string   `json:"since,omitempty" jsonschema:"range start YYYY-MM-DD, requires until"`
	Until      string   `json:"until,omitempty" jsonschema:"range end YYYY-MM-DD, requires since"`
	Level      string   `json:"level,omitempty" jsonschema:"aggregation level: account, campaign, adset or ad"`
	Fields     []string `json:"fields,omitempty" jsonschema:"insight metrics to return"`
	Breakdowns []string `json:"breakdowns,omitempty" jsonschema:"breakdowns, e.g. age, gender"`
	Limit      int      `json:"limit,omitempty" jsonschema:"maximum number of rows (default 25, max 1000)"`
}

func (h *MCPHandler) HandleGetAdSets(ctx context.Context, req *sdk.CallToolRequest, input listChildrenInput) (*sdk.CallToolResult, any, error) {
	adSets, err := h.srv.ListAdSets(h.callContext(ctx, req), server.ListChildrenParams{
		AccountID:  input.AccountID,
		CampaignID: input.CampaignID,
		Fields:     input.Fields,
		Limit:      input.Limit,
	})
	if err != nil {
		return h.failure("get_adsets", err)
	}
	return h.listResult(adSets)
}

func (h *MCPHandler) HandleGetAds(ctx context.Context, req *sdk.CallToolRequest, input listChildrenInput) (*sdk.CallToolResult, any, error) {
	ads, err := h.srv.ListAds(h.callContext(ctx, req), server.ListChildrenParams{
		AccountID:  input.AccountID,
		CampaignID: input.CampaignID,
		AdSetID:    input.AdSetID,
		Fields:     input.Fields,
		Limit:      input.Limit,
	})
	if err != nil {
		return h.failure("get_ads", err)
	}
	return h.listResult(ads)
}

func (h *MCPHandler) HandleGetInsights(ctx context.Context, req *sdk.CallToolRequest, input insightsInput) (*sdk.CallToolResult, any, error) {
	rows, err := h.srv.GetInsights(h.callContext(ctx, req), server.InsightsParams{
		ObjectID:   input.ObjectID,
		DatePreset: input.DatePreset,
		Since:      input.Since,
		Until:      input.Until,
		Level:      input.Level,
		Fields:     input.Fields,
		Breakdowns: input.Breakdowns,
		Limit:      input.Limit,
	})
	if err != nil {
		return h.failure("get_insights", err)
	}
	return h.listResult(rows)
}

func (h *MCPHandler) registerDeliveryTools(mcpServer *sdk.Server) {
	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "get_adsets",
		Description: "List ad sets of a campaign or an ad account",
	}, h.HandleGetAdSets)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "get_ads",
		Description: "List ads of an ad set, a campaign or an ad account",
	}, h.HandleGetAds)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "get_insights",
		Description: "Get performance insights for an ad account, campaign, ad set or ad",
	}, h.HandleGetInsights)
}
