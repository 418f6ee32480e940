package server

import (
	"context"
	"net/url"
	"strings"

	"adte.com/adte/meta-ads-mcp/internal/api"
	"adte.com/adte/meta-ads-mcp/internal/graph"
)

const campaignFields = "id,name,objective,status,effective_status,daily_budget,lifetime_budget,bid_strategy,created_time,updated_time"

// ListCampaignsParams encapsulates parameters for listing campaigns
type ListCampaignsParams struct {
	AccountID string
	Statuses  []string
	Fields    []string
	Limit     int
}

// CreateCampaignParams encapsulates parameters for creating a campaign
type CreateCampaignParams struct {
	AccountID           string
	Name                string
	Objective           string
	Status              string
	SpecialAdCategories []string
	DailyBudget         int64
	LifetimeBudget      int64
	BidStrategy         string
}

// UpdateCampaignParams encapsulates parameters for updating a campaign
type UpdateCampaignParams struct {
	CampaignID     string
	Name           string
	Status         string
	DailyBudget    int64
	LifetimeBudget int64
	BidStrategy    string
}

// ListCampaigns returns campaigns of an ad account.
func (s *Server) ListCampaigns(ctx context.Context, params ListCampaignsParams) ([]api.Object, error) {
	if err := requireField("account_id", params.AccountID); err != nil {
		return nil, err
	}
	query := fieldsParam(params.Fields, campaignFields)
	if len(params.Statuses) > 0 {
		query.Set("effective_status", jsonList(upper(params.Statuses)))
	}
	return graph.GetPaginated[api.Object](ctx, s.Graph, NormalizeAccountID(params.AccountID)+"/campaigns", query, clampLimit(params.Limit))
}

// GetObject reads any Graph node by id.
func (s *Server) GetObject(ctx context.Context, id string, fields []string, fallback string) (api.Object, error) {
	if err := requireField("id", id); err != nil {
		return nil, err
	}
	var obj api.Object
	if err := s.Graph.Get(ctx, strings.TrimSpace(id), fieldsParam(fields, fallback), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// GetCampaign reads one campaign.
func (s *Server) GetCampaign(ctx context.Context, campaignID string, fields []string) (api.Object, error) {
	return s.GetObject(ctx, campaignID, fields, campaignFields)
}

// CreateCampaign creates a campaign. New campaigns default to PAUSED.
func (s *Server) CreateCampaign(ctx context.Context, params CreateCampaignParams) (api.Object, error) {
	if err := requireField("account_id", params.AccountID); err != nil {
		return nil, err
	}
	if err := requireField("name", params.Name); err != nil {
		return nil, err
	}
	if err := requireField("objective", params.Objective); err != nil {
		return nil, err
	}

	status := strings.ToUpper(strings.TrimSpace(params.Status))
	if status == "" {
		status = "PAUSED"
	}

	form := url.Values{}
	form.Set("name", params.Name)
	form.Set("objective", strings.ToUpper(params.Objective))
	form.Set("status", status)
	form.Set("special_ad_categories", jsonList(upper(params.SpecialAdCategories)))
	setIfPositive(form, "daily_budget", params.DailyBudget)
	setIfPositive(form, "lifetime_budget", params.LifetimeBudget)
	setIfNotEmpty(form, "bid_strategy", params.BidStrategy)

	var created api.Object
	if err := s.Graph.PostForm(ctx, NormalizeAccountID(params.AccountID)+"/campaigns", form, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateCampaign changes the given campaign fields.
func (s *Server) UpdateCampaign(ctx context.Context, params UpdateCampaignParams) (api.Object, error) {
	if err := requireField("campaign_id", params.CampaignID); err != nil {
		return nil, err
	}

	form := url.Values{}
	setIfNotEmpty(form, "name", params.Name)
	setIfNotEmpty(form, "status", strings.ToUpper(params.Status))
	setIfPositive(form, "daily_budget", params.DailyBudget)
	setIfPositive(form, "lifetime_budget", params.LifetimeBudget)
	setIfNotEmpty(form, "bid_strategy", params.BidStrategy)
	if len(form) == 0 {
		return nil, ValidationError{Message: "No valid fields to update", Code: "NO_UPDATES"}
	}

	var result api.Object
	if err := s.Graph.PostForm(ctx, strings.TrimSpace(params.CampaignID), form, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteObject deletes a campaign, ad set or ad.
func (s *Server) DeleteObject(ctx context.Context, id string) (api.Object, error) {
	if err := requireField("id", id); err != nil {
		return nil, err
	}
	var result api.Object
	if err := s.Graph.Delete(ctx, strings.TrimSpace(id), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func upper(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, strings.ToUpper(v))
		}
	}
	return out
}
