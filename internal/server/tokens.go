package server

import (
	"context"
	"net/url"
	"strings"

	"adte.com/adte/meta-ads-mcp/internal/api"
	"adte.com/adte/meta-ads-mcp/internal/auth"
)

// RegisterTokenParams encapsulates parameters for adding a named token
type RegisterTokenParams struct {
	Name     string
	Token    string
	Validate bool
}

// RegisterToken stores a named access token, optionally checking it against
// /me first. A token that fails the check is not stored.
func (s *Server) RegisterToken(ctx context.Context, params RegisterTokenParams) (*api.TokenRegistration, error) {
	name := strings.TrimSpace(params.Name)
	token := strings.TrimSpace(params.Token)
	if err := requireField("name", name); err != nil {
		return nil, err
	}
	if err := requireField("token", token); err != nil {
		return nil, err
	}

	var identity *api.Identity
	if params.Validate {
		me, err := s.Identity(auth.WithToken(ctx, token))
		if err != nil {
			s.Logger.Warn("access token validation failed", "name", name, "token", auth.Mask(token), "error", err)
			return nil, err
		}
		identity = me
	}

	s.Tokens.Register(name, token)
	activeName, _, _ := s.Tokens.Active()
	s.Logger.Info("access token registered", "name", name, "token", auth.Mask(token), "active", activeName == name)

	return &api.TokenRegistration{
		Name:        name,
		MaskedToken: auth.Mask(token),
		Active:      activeName == name,
		Identity:    identity,
	}, nil
}

// SwitchToken makes a registered token active.
func (s *Server) SwitchToken(name string) error {
	if err := requireField("name", name); err != nil {
		return err
	}
	if !s.Tokens.SetActive(strings.TrimSpace(name)) {
		return ValidationError{Message: "no access token registered under " + name, Code: "NOT_FOUND", Field: "name"}
	}
	s.Logger.Info("active access token switched", "name", name)
	return nil
}

// RemoveToken forgets a registered token.
func (s *Server) RemoveToken(name string) (auth.TokenList, error) {
	if err := requireField("name", name); err != nil {
		return auth.TokenList{}, err
	}
	if !s.Tokens.Remove(strings.TrimSpace(name)) {
		return auth.TokenList{}, ValidationError{Message: "no access token registered under " + name, Code: "NOT_FOUND", Field: "name"}
	}
	s.Logger.Info("access token removed", "name", name)
	return s.Tokens.List(), nil
}

// ListTokens returns registered token names.
func (s *Server) ListTokens() auth.TokenList {
	return s.Tokens.List()
}

// Identity returns the user or system user behind the current token.
func (s *Server) Identity(ctx context.Context) (*api.Identity, error) {
	var me api.Identity
	if err := s.Graph.Get(ctx, "me", url.Values{"fields": {"id,name"}}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}
