package mcp

import (
	"context"

	"adte.com/adte/meta-ads-mcp/internal/server"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type uploadImageInput struct {
	AccountID string `json:"account_id" jsonschema:"ad account id"`
	Filename  string `json:"filename" jsonschema:"image file name, e.g. banner.png"`
	Data      string `json:"data" jsonschema:"base64 encoded image bytes"`
}

type createAudienceInput struct {
	AccountID          string `json:"account_id" jsonschema:"ad account id"`
	Name               string `json:"name" jsonschema:"audience name"`
	Description        string `json:"description,omitempty" jsonschema:"audience description"`
	Subtype            string `json:"subtype,omitempty" jsonschema:"audience subtype (default CUSTOM)"`
	CustomerFileSource string `json:"customer_file_source,omitempty" jsonschema:"USER_PROVIDED_ONLY, PARTNER_PROVIDED_ONLY or BOTH_USER_AND_PARTNER_PROVIDED"`
}

func (h *MCPHandler) HandleUploadAdImage(ctx context.Context, req *sdk.CallToolRequest, input uploadImageInput) (*sdk.CallToolResult, any, error) {
	uploads, err := h.srv.UploadImage(h.callContext(ctx, req), server.UploadImageParams{
		AccountID: input.AccountID,
		Filename:  input.Filename,
		Data:      input.Data,
	})
	if err != nil {
		return h.failure("upload_ad_image", err)
	}
	return h.textResult(uploads)
}

func (h *MCPHandler) HandleCreateCustomAudience(ctx context.Context, req *sdk.CallToolRequest, input createAudienceInput) (*sdk.CallToolResult, any, error) {
	created, err := h.srv.CreateCustomAudience(h.callContext(ctx, req), server.CreateAudienceParams{
		AccountID:          input.AccountID,
		Name:               input.Name,
		Description:        input.Description,
		Subtype:            input.Subtype,
		CustomerFileSource: input.CustomerFileSource,
	})
	if err != nil {
		return h.failure("create_custom_audience", err)
	}
	return h.textResult(created)
}

func (h *MCPHandler) registerCreativeTools(mcpServer *sdk.Server) {
	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "upload_ad_image",
		Description: "Upload an image to an ad account's image library and return its hash",
	}, h.HandleUploadAdImage)

	sdk.AddTool(mcpServer, &sdk.Tool{
		Name:        "create_custom_audience",
		Description: "Create a custom audience in an ad account",
	}, h.HandleCreateCustomAudience)
}
