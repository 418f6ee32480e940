package server

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"sort"
	"strings"

	"adte.com/adte/meta-ads-mcp/internal/api"
	"adte.com/adte/meta-ads-mcp/internal/graph"
)

// UploadImageParams encapsulates parameters for an ad image upload
type UploadImageParams struct {
	AccountID string
	Filename  string
	// Base64 encoded image bytes.
	Data string
}

// CreateAudienceParams encapsulates parameters for a custom audience
type CreateAudienceParams struct {
	AccountID          string
	Name               string
	Description        string
	Subtype            string
	CustomerFileSource string
}

type adImagesResponse struct {
	Images map[string]struct {
		Hash string `json:"hash"`
		URL  string `json:"url"`
	} `json:"images"`
}

// UploadImage uploads an image to the account's ad image library.
func (s *Server) UploadImage(ctx context.Context, params UploadImageParams) ([]api.ImageUpload, error) {
	if err := requireField("account_id", params.AccountID); err != nil {
		return nil, err
	}
	if err := requireField("filename", params.Filename); err != nil {
		return nil, err
	}
	if err := requireField("data", params.Data); err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(params.Data))
	if err != nil {
		return nil, ValidationError{Message: "data must be base64 encoded", Code: "INVALID_ENCODING", Field: "data"}
	}

	filename := filepath.Base(params.Filename)
	var resp adImagesResponse
	err = s.Graph.PostMultipart(ctx, NormalizeAccountID(params.AccountID)+"/adimages", &graph.MultipartForm{
		Files: []graph.MultipartFile{{Field: "filename", Filename: filename, Data: data}},
	}, &resp)
	if err != nil {
		return nil, err
	}

	uploads := make([]api.ImageUpload, 0, len(resp.Images))
	for name, img := range resp.Images {
		uploads = append(uploads, api.ImageUpload{Name: name, Hash: img.Hash, URL: img.URL})
	}
	sort.Slice(uploads, func(i, j int) bool { return uploads[i].Name < uploads[j].Name })
	return uploads, nil
}

// CreateCustomAudience creates a custom audience shell for later uploads.
func (s *Server) CreateCustomAudience(ctx context.Context, params CreateAudienceParams) (api.Object, error) {
	if err := requireField("account_id", params.AccountID); err != nil {
		return nil, err
	}
	if err := requireField("name", params.Name); err != nil {
		return nil, err
	}

	subtype := strings.ToUpper(strings.TrimSpace(params.Subtype))
	if subtype == "" {
		subtype = "CUSTOM"
	}
	body := map[string]string{
		"name":    params.Name,
		"subtype": subtype,
	}
	if params.Description != "" {
		body["description"] = params.Description
	}
	if params.CustomerFileSource != "" {
		body["customer_file_source"] = strings.ToUpper(params.CustomerFileSource)
	}

	var created api.Object
	if err := s.Graph.Post(ctx, NormalizeAccountID(params.AccountID)+"/customaudiences", body, &created); err != nil {
		return nil, err
	}
	return created, nil
}
