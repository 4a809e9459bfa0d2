package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/regula/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for regula resources.
	uriScheme = "regula://"
)

type regulationInfo struct {
	Name string `json:"name"`
	Abbr string `json:"abbr"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "regulations",
		Name:        "regulations",
		Description: "The regulations questions are answered from",
		MIMEType:    "application/json",
	}, s.handleRegulationsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "regulations/{abbr}",
		Name:        "regulation",
		Description: "One configured regulation, by abbreviation",
		MIMEType:    "application/json",
	}, s.handleRegulationResource)

	if s.ports.Index != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "index/last-run",
			Name:        "index-last-run",
			Description: "Report of the most recent index build",
			MIMEType:    "application/json",
		}, s.handleLastRunResource)
	}
}

// handleRegulationsResource lists the configured regulations.
func (s *Server) handleRegulationsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	regs := s.ports.Ask.Regulations()
	infos := make([]regulationInfo, len(regs))
	for i, r := range regs {
		infos[i] = regulationInfo{Name: r.Name, Abbr: r.Abbr}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleRegulationResource returns one regulation.
func (s *Server) handleRegulationResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	abbr := extractAbbr(req.Params.URI)
	if abbr == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	for _, r := range s.ports.Ask.Regulations() {
		if r.Abbr == abbr {
			return jsonResult(req.Params.URI, regulationInfo{Name: r.Name, Abbr: r.Abbr})
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// handleLastRunResource returns the last index build report.
func (s *Server) handleLastRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	report, err := s.ports.Index.LastRun(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading last index run: %w", err)
	}
	return jsonResult(req.Params.URI, report)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractAbbr extracts the abbreviation from a URI like regula://regulations/{abbr}.
func extractAbbr(uri string) string {
	const prefix = uriScheme + "regulations/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	abbr := strings.TrimPrefix(uri, prefix)
	if strings.Contains(abbr, "/") {
		return ""
	}
	return abbr
}
