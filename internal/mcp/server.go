// Package mcp exposes the game as Model Context Protocol tools over stdio.
// An MCP-capable assistant plays through the same session manager as the
// HTTP bridge, fog of war included: tools report observations, never the
// full cave.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kingrea/wumpusworld/internal/scenario"
	"github.com/kingrea/wumpusworld/internal/session"
)

const serverName = "wumpus-world"

// Server wraps the mcp-go server with the game tools.
type Server struct {
	mcpServer *server.MCPServer
	sessions  *session.Manager
	scenarios []scenario.DefinitionFile
	logger    *zap.Logger
}

// Option customizes server construction.
type Option func(*Server)

// WithScenarios makes fixed caves available to new games.
func WithScenarios(files []scenario.DefinitionFile) Option {
	return func(s *Server) {
		s.scenarios = files
	}
}

// WithLogger attaches the application logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an MCP server over the given session manager.
func NewServer(version string, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(serverName, version),
		sessions:  sessions,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.registerTools()
	return s
}

// registerTool registers a tool with the server.
func (s *Server) registerTool(name, description string, handler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)) {
	tool := mcp.NewTool(name, mcp.WithDescription(description))

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		return handler(ctx, args)
	})
}

// ServeStdio starts the server on Stdio. It blocks until the client closes
// the stream.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp server listening on stdio", zap.String("name", serverName))
	return server.ServeStdio(s.mcpServer)
}
