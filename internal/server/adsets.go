package server

import (
	"context"
	"strings"

	"adte.com/adte/meta-ads-mcp/internal/api"
	"adte.com/adte/meta-ads-mcp/internal/graph"
)

const (
	adSetFields = "id,name,campaign_id,status,effective_status,daily_budget,lifetime_budget,optimization_goal,billing_event,bid_amount,start_time,end_time"
	adFields    = "id,name,adset_id,campaign_id,status,effective_status,creative{id,name},created_time,updated_time"
)

// ListChildrenParams selects the parent whose ad sets or ads are listed. The
// most specific parent given wins.
type ListChildrenParams struct {
	AccountID  string
	CampaignID string
	AdSetID    string
	Fields     []string
	Limit      int
}

// ListAdSets returns ad sets of a campaign or an ad account.
func (s *Server) ListAdSets(ctx context.Context, params ListChildrenParams) ([]api.Object, error) {
	parent, err := parentPath(params.AccountID, params.CampaignID, "")
	if err != nil {
		return nil, err
	}
	return graph.GetPaginated[api.Object](ctx, s.Graph, parent+"/adsets", fieldsParam(params.Fields, adSetFields), clampLimit(params.Limit))
}

// ListAds returns ads of an ad set, a campaign or an ad account.
func (s *Server) ListAds(ctx context.Context, params ListChildrenParams) ([]api.Object, error) {
	parent, err := parentPath(params.AccountID, params.CampaignID, params.AdSetID)
	if err != nil {
		return nil, err
	}
	return graph.GetPaginated[api.Object](ctx, s.Graph, parent+"/ads", fieldsParam(params.Fields, adFields), clampLimit(params.Limit))
}

func parentPath(accountID, campaignID, adSetID string) (string, error) {
	switch {
	case strings.TrimSpace(adSetID) != "":
		return strings.TrimSpace(adSetID), nil
	case strings.TrimSpace(campaignID) != "":
		return strings.TrimSpace(campaignID), nil
	case strings.TrimSpace(accountID) != "":
		return NormalizeAccountID(accountID), nil
	}
	return "", ValidationError{Message: "one of account_id, campaign_id or adset_id is required", Code: "MISSING_REQUIRED_FIELD"}
}
