package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all ReplyPilot tools
// registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("replypilot", "1.0.0")
	client := NewReplyPilotClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolDraftReplies, h.HandleDraftReplies)
	s.AddTool(ToolGetUsage, h.HandleGetUsage)
	s.AddTool(ToolGetProfile, h.HandleGetProfile)
	s.AddTool(ToolUpdateProfile, h.HandleUpdateProfile)

	return s
}
