package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("squid_link_status",
			mcp.WithDescription("Report whether the squid link engine considers the link Connected"),
		),
		s.handleLinkStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("squid_stats",
			mcp.WithDescription("Report the link engine's rx/tx/error/resend counters"),
		),
		s.handleStats,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("squid_open",
			mcp.WithDescription("Open a new multiplexed channel (id 1-15) on the link"),
		),
		s.handleOpenChannel,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("squid_close",
			mcp.WithDescription("Close a channel, draining its queued bytes"),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Channel id to close, 1-15"),
			),
		),
		s.handleCloseChannel,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("squid_send",
			mcp.WithDescription("Enqueue bytes for transmission on a channel"),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Channel id to send on, 1-15"),
			),
			mcp.WithString("data",
				mcp.Required(),
				mcp.Description("Bytes to enqueue, as UTF-8 text"),
			),
		),
		s.handleSend,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("squid_recv",
			mcp.WithDescription("Drain bytes received on a channel without blocking"),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Channel id to read from, 1-15"),
			),
			mcp.WithNumber("max",
				mcp.Description("Maximum bytes to return (default 512)"),
			),
		),
		s.handleRecv,
	)
}
