package mcp

import mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

// RegisterAllTools wires every reimport tool into the MCP server.
func RegisterAllTools(s *mcpsdk.Server, state *State) {
	registerWorkspaceTools(s, state)
	registerRenameTools(s, state)
	registerHistoryTools(s, state)
}
