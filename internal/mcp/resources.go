// ABOUTME: MCP resource implementations for the rhythm store.
// ABOUTME: Provides rhythm://profile, rhythm://today, rhythm://garden and rhythm://stats.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// statsDays is the length of the recent-rhythm strip.
const statsDays = 7

func (s *Server) registerResources() {
	// rhythm://profile - Profile with tokens and streaks
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "rhythm://profile",
		Name:        "Profile",
		Description: "The user's profile, token balance and streaks",
		MIMEType:    "application/json",
	}, s.handleProfileResource)

	// rhythm://today - Today's check-in and routine
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "rhythm://today",
		Name:        "Today",
		Description: "Today's check-in and active routine",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// rhythm://garden - Every garden item
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "rhythm://garden",
		Name:        "Garden",
		Description: "All items in the garden",
		MIMEType:    "application/json",
	}, s.handleGardenResource)

	// rhythm://stats - Summary plus the last week
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "rhythm://stats",
		Name:        "Stats",
		Description: "Logged days, average sleep, streaks and the last seven days",
		MIMEType:    "application/json",
	}, s.handleStatsResource)
}

// Resource handlers

func (s *Server) handleProfileResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource("rhythm://profile", s.store.Profile())
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	result := map[string]interface{}{
		"date":    s.store.TodayKey(),
		"routine": s.store.Routine(),
	}
	if l, ok := s.store.TodayLog(); ok {
		result["log"] = l
	}
	return jsonResource("rhythm://today", result)
}

func (s *Server) handleGardenResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	garden := s.store.Garden()
	return jsonResource("rhythm://garden", map[string]interface{}{
		"items": garden,
		"count": len(garden),
	})
}

func (s *Server) handleStatsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource("rhythm://stats", map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"summary":      s.store.Summary(),
		"recent":       s.store.Rhythm(statsDays),
		"sync":         s.store.Status().State.String(),
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
