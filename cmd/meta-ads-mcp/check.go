package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"adte.com/adte/meta-ads-mcp/internal/auth"
	"adte.com/adte/meta-ads-mcp/internal/config"
	"adte.com/adte/meta-ads-mcp/internal/graph"
	"adte.com/adte/meta-ads-mcp/internal/server"
)

func newCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify every configured access token against the Graph API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig(v)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log.Level, os.Stderr)
			srv, err := newServer(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer srv.Journal.Close()

			failed := checkTokens(cmd.Context(), srv, cfg.Meta.AccessToken, cmd.OutOrStdout())
			if failed > 0 {
				return fmt.Errorf("%d access token(s) failed verification", failed)
			}
			return nil
		},
	}
}

const maxParallelChecks = 4

type tokenCandidate struct {
	name  string
	token string
}

type checkResult struct {
	identity string
	status   string
}

// checkTokens verifies tokens in parallel, renders one row per token and
// returns how many failed.
func checkTokens(ctx context.Context, srv *server.Server, fallback string, out io.Writer) int {
	list := srv.ListTokens()
	candidates := make([]tokenCandidate, 0, len(list.Available)+1)
	for _, name := range list.Available {
		token, _ := srv.Tokens.Get(name)
		candidates = append(candidates, tokenCandidate{name: name, token: token})
	}
	if fallback != "" {
		candidates = append(candidates, tokenCandidate{name: "(fallback)", token: fallback})
	}

	results := make([]checkResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelChecks)
	for i, c := range candidates {
		g.Go(func() error {
			identity, err := srv.Identity(auth.WithToken(gctx, c.token))
			if err != nil {
				status := string(graph.KindOf(err))
				if status == "" {
					status = "ERROR"
				}
				results[i] = checkResult{status: status}
				return nil
			}
			results[i] = checkResult{identity: identity.Name + " (" + identity.ID + ")", status: "OK"}
			return nil
		})
	}
	_ = g.Wait()

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Name", "Token", "Active", "Identity", "Status"})

	failed := 0
	for i, c := range candidates {
		active := ""
		if c.name == list.Active {
			active = "yes"
		}
		if results[i].status != "OK" {
			failed++
		}
		t.AppendRow(table.Row{c.name, auth.Mask(c.token), active, results[i].identity, results[i].status})
	}
	if len(candidates) == 0 {
		t.AppendRow(table.Row{"-", "-", "", "", "no tokens configured"})
	}
	t.Render()
	return failed
}
