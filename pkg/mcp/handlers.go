package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) handleLinkStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := LinkStatusOutput{LinkUp: s.conn.LinkIsUp()}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.conn.Stats()
	out := StatsOutput{
		LinkUp:     s.conn.LinkIsUp(),
		RxFrames:   st.RxFrames,
		TxFrames:   st.TxFrames,
		CRCErrors:  st.CRCErrors,
		Duplicates: st.Duplicates,
		Drops:      st.Drops,
		Timeouts:   st.Timeouts,
		Resends:    st.Resends,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleOpenChannel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.conn.OpenChannel()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open channel: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(OpenChannelOutput{ID: id})), nil
}

func (s *Server) handleCloseChannel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredChannelID(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.conn.CloseChannel(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to close channel %d: %s", id, err)), nil
	}
	return mcp.NewToolResultText(formatJSON(CloseChannelOutput{Success: true})), nil
}

func (s *Server) handleSend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredChannelID(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := requiredString(request, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.conn.Send(id, []byte(data)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send on channel %d: %s", id, err)), nil
	}
	return mcp.NewToolResultText(formatJSON(SendOutput{Queued: len(data)})), nil
}

func (s *Server) handleRecv(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredChannelID(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	max := 512
	if m, ok := request.GetArguments()["max"]; ok {
		if mf, ok := m.(float64); ok && mf > 0 {
			max = int(mf)
		}
	}

	buf := make([]byte, max)
	n := s.conn.Recv(id, buf)
	return mcp.NewToolResultText(formatJSON(RecvOutput{Data: string(buf[:n]), N: n})), nil
}

// --- helpers ---

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

// requiredChannelID extracts and range-checks a channel id argument; MCP
// numeric arguments arrive as float64.
func requiredChannelID(request mcp.CallToolRequest, key string) (uint8, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("required parameter %q is missing", key)
	}
	f, ok := v.(float64)
	if !ok || f < 1 || f > 15 {
		return 0, fmt.Errorf("parameter %q must be a channel id between 1 and 15", key)
	}
	return uint8(f), nil
}

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
