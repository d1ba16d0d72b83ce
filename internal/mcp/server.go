// ABOUTME: MCP server setup for the rhythm progress store.
// ABOUTME: Wraps the MCP server around a live Store.
package mcp

import (
	"context"
	"errors"

	"github.com/harperreed/rhythm/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with store access.
type Server struct {
	mcpServer *mcp.Server
	store     *store.Store
}

// NewServer creates a new MCP server over st.
func NewServer(st *store.Store) (*Server, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "rhythm",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		store:     st,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
