package server

import (
	"context"

	"adte.com/adte/meta-ads-mcp/internal/api"
	"adte.com/adte/meta-ads-mcp/internal/graph"
)

const (
	accountFields = "id,name,account_id,account_status,currency,timezone_name,amount_spent,balance"
	billingFields = "id,name,currency,spend_cap,amount_spent,balance,is_prepay_account,funding_source_details,min_campaign_group_spend_cap"
)

// ListAdAccounts returns the ad accounts visible to the current token.
func (s *Server) ListAdAccounts(ctx context.Context, fields []string, limit int) ([]api.Object, error) {
	return graph.GetPaginated[api.Object](ctx, s.Graph, "me/adaccounts", fieldsParam(fields, accountFields), clampLimit(limit))
}

// GetAccount returns one ad account.
func (s *Server) GetAccount(ctx context.Context, accountID string, fields []string) (api.Object, error) {
	if err := requireField("account_id", accountID); err != nil {
		return nil, err
	}
	var account api.Object
	if err := s.Graph.Get(ctx, NormalizeAccountID(accountID), fieldsParam(fields, accountFields), &account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetBilling returns spend and funding details of an ad account.
func (s *Server) GetBilling(ctx context.Context, accountID string) (api.Object, error) {
	return s.GetAccount(ctx, accountID, []string{billingFields})
}
