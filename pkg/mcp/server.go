package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/retro-plastics/squid/pkg/squid"
)

// Server wraps the MCP server with squid link control functionality.
type Server struct {
	mcpServer *server.MCPServer
	conn      *squid.Conn
}

// NewServer creates a new MCP server exposing conn's channel operations as
// tools.
func NewServer(conn *squid.Conn) *Server {
	s := &Server{conn: conn}

	s.mcpServer = server.NewMCPServer(
		"squid",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
