package retrieval

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "1.0.0"

// NewServer exposes the retrieval pipeline as an MCP server with a single
// "retrieve" tool.
func NewServer(client *Client) *server.MCPServer {
	s := server.NewMCPServer(
		"andozai-retrieval",
		Version,
		server.WithToolCapabilities(false),
		server.WithInstructions("Multilingual (Russian/Tajik) tax-law retrieval. Call retrieve to fetch grounding context for a user question."),
	)
	s.AddTool(
		mcp.NewTool("retrieve",
			mcp.WithDescription("Retrieve ranked grounding passages for a user question"),
			mcp.WithString("question", mcp.Required(), mcp.Description("The user question, Russian or Tajik")),
			mcp.WithString("conversation_id", mcp.Description("Conversation identifier for follow-up resolution")),
			mcp.WithNumber("top_n", mcp.Description("Maximum number of passages to return")),
		),
		handleRetrieve(client),
	)
	return s
}

func handleRetrieve(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		conversationID := req.GetString("conversation_id", "")
		topN := req.GetInt("top_n", 0)

		result := client.Retrieve(ctx, question, conversationID, topN)
		b, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("marshal retrieval result: %w", err)
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}
