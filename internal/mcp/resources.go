package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/health-assessment-mcp-server/internal/domain"
)

// Resource URIs.
const (
	ResourceReferenceValues     = "health://reference-values"
	ResourceRecommendationRules = "health://recommendation-rules"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         ResourceReferenceValues,
		Name:        "reference-values",
		Description: "Ideal values used for the actual-versus-ideal comparison series.",
		MIMEType:    "application/json",
	}, s.readReferenceValues)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         ResourceRecommendationRules,
		Name:        "recommendation-rules",
		Description: "Referral and advisory rule table in evaluation order.",
		MIMEType:    "application/json",
	}, s.readRecommendationRules)
}

func (s *Server) readReferenceValues(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource(ResourceReferenceValues, domain.IdealReferenceValues())
}

func (s *Server) readRecommendationRules(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource(ResourceRecommendationRules, s.assessor.Engine().Rules())
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(payload),
		}},
	}, nil
}
