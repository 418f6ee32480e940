package server

import (
	"context"
	"encoding/json"
	"strings"

	"adte.com/adte/meta-ads-mcp/internal/api"
	"adte.com/adte/meta-ads-mcp/internal/graph"
)

const insightFields = "impressions,clicks,spend,ctr,cpc,cpm,reach,frequency,actions"

// InsightsParams encapsulates parameters for an insights read
type InsightsParams struct {
	ObjectID   string
	DatePreset string
	Since      string
	Until      string
	Level      string
	Fields     []string
	Breakdowns []string
	Limit      int
}

// GetInsights returns performance rows for an account, campaign, ad set or ad.
func (s *Server) GetInsights(ctx context.Context, params InsightsParams) ([]api.Object, error) {
	if err := requireField("object_id", params.ObjectID); err != nil {
		return nil, err
	}

	objectID := strings.TrimSpace(params.ObjectID)
	if strings.HasPrefix(objectID, "act_") || params.Level == "account" {
		objectID = NormalizeAccountID(objectID)
	}

	query := fieldsParam(params.Fields, insightFields)
	switch {
	case params.Since != "" || params.Until != "":
		if params.Since == "" || params.Until == "" {
			return nil, ValidationError{Message: "since and until must be given together", Code: "INVALID_DATE_RANGE"}
		}
		timeRange, err := json.Marshal(map[string]string{"since": params.Since, "until": params.Until})
		if err != nil {
			return nil, err
		}
		query.Set("time_range", string(timeRange))
	case params.DatePreset != "":
		query.Set("date_preset", params.DatePreset)
	default:
		query.Set("date_preset", "last_30d")
	}
	setIfNotEmpty(query, "level", params.Level)
	if len(params.Breakdowns) > 0 {
		query.Set("breakdowns", strings.Join(params.Breakdowns, ","))
	}

	return graph.GetPaginated[api.Object](ctx, s.Graph, objectID+"/insights", query, clampLimit(params.Limit))
}
