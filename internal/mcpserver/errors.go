package mcpserver

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	amanerrors "github.com/Aman-CERP/mcp-vector-search/internal/errors"
)

// errorResult builds the tool-error payload:
// {"content":[{"type":"text","text":"Search error: …"}],"isError":true}.
func errorResult(err *amanerrors.AmanError) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Search error: %s", err.Message)},
		},
		IsError: true,
	}
}
