package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/docent/internal/catalog"
	"github.com/kalambet/docent/internal/composer"
	"github.com/kalambet/docent/internal/portfolio"
	"github.com/kalambet/docent/internal/proxy"
	"github.com/kalambet/docent/internal/session"
	"github.com/kalambet/docent/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store      *storage.Store
	Portfolios *portfolio.Manager
	Chatter    Chatter
	Model      string
}

// NewMCPServer creates an MCP server exposing stored portfolios to agent
// clients: question answering with the same verified-answer precedence the
// chat widget applies, answer editing, and the question catalog.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"docent",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("docent portfolio assistant: ask questions about stored portfolios, manage verified answers."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("ask_portfolio",
			mcp.WithDescription("Ask a question about a stored portfolio. Catalog questions with a verified owner answer are returned directly; everything else goes to the answering model."),
			mcp.WithString("portfolio_id", mcp.Description("ID of the stored portfolio"), mcp.Required()),
			mcp.WithString("question", mcp.Description("Free-text question, or a catalog question key such as best_project"), mcp.Required()),
		),
		mcpAskPortfolio(deps),
	)

	s.AddTool(
		mcp.NewTool("set_chat_answer",
			mcp.WithDescription("Set or clear a verified owner answer for one catalog question key."),
			mcp.WithString("portfolio_id", mcp.Description("ID of the stored portfolio"), mcp.Required()),
			mcp.WithString("key", mcp.Description("Catalog question key (e.g. best_project)"), mcp.Required()),
			mcp.WithString("value", mcp.Description("Answer text; empty clears the entry")),
		),
		mcpSetChatAnswer(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"docent://catalog",
			"Question Catalog",
			mcp.WithResourceDescription("The fixed three-category question taxonomy as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCatalog(),
	)

	s.AddResource(
		mcp.NewResource(
			"docent://recent",
			"Recent Interactions",
			mcp.WithResourceDescription("Last 10 logged chat exchanges (summaries only)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpAskPortfolio(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("portfolio_id")
		if err != nil {
			return mcpError("portfolio_id is required"), nil
		}
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		p, err := deps.Portfolios.Get(id)
		if err != nil {
			return mcpError(fmt.Sprintf("loading portfolio: %v", err)), nil
		}

		// A catalog key goes through the same precedence policy as the
		// widget: verified answers never reach the model.
		if q, ok := catalog.QuestionByKey(question); ok {
			res := session.Resolve(q, p)
			if res.Verified {
				return mcpText(res.Text), nil
			}
			question = res.Text
		}

		system := composer.BuildSystemPrompt(composer.BuildContext(p))
		reply, err := deps.Chatter.Chat(ctx, deps.Model, []proxy.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: question},
		})
		if err != nil {
			return mcpError(fmt.Sprintf("answering failed: %v", err)), nil
		}
		return mcpText(reply), nil
	}
}

func mcpSetChatAnswer(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("portfolio_id")
		if err != nil {
			return mcpError("portfolio_id is required"), nil
		}
		key, err := req.RequireString("key")
		if err != nil {
			return mcpError("key is required"), nil
		}
		if _, ok := catalog.QuestionByKey(key); !ok {
			return mcpError(fmt.Sprintf("unknown question key %q", key)), nil
		}

		value := req.GetString("value", "")

		if err := deps.Portfolios.SetAnswer(id, key, value); err != nil {
			return mcpError(fmt.Sprintf("failed to set answer: %v", err)), nil
		}

		if value == "" {
			return mcpText(fmt.Sprintf("Cleared answer for %s", key)), nil
		}
		return mcpText(fmt.Sprintf("Set answer for %s", key)), nil
	}
}

func mcpResourceCatalog() server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type questionView struct {
			Key     string `json:"key"`
			Keyword string `json:"keyword"`
			Text    string `json:"text"`
		}
		type categoryView struct {
			ID        string         `json:"id"`
			Title     string         `json:"title"`
			Questions []questionView `json:"questions"`
		}

		cats := catalog.Categories()
		views := make([]categoryView, len(cats))
		for i, c := range cats {
			qs := make([]questionView, len(c.Questions))
			for j, q := range c.Questions {
				qs[j] = questionView{Key: q.Key, Keyword: q.Keyword, Text: q.Text}
			}
			views[i] = categoryView{ID: c.ID, Title: c.Title, Questions: qs}
		}

		b, err := json.Marshal(views)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		interactions, err := deps.Store.GetRecentInteractions(10)
		if err != nil {
			return nil, fmt.Errorf("failed to get recent interactions: %w", err)
		}

		type interactionSummary struct {
			ID        string `json:"id"`
			CreatedAt string `json:"created_at"`
			Mode      string `json:"mode"`
			Message   string `json:"message"`
		}

		summaries := make([]interactionSummary, len(interactions))
		for i, ix := range interactions {
			msg := ix.Message
			if utf8.RuneCountInString(msg) > 200 {
				runes := []rune(msg)
				msg = string(runes[:200]) + "..."
			}
			summaries[i] = interactionSummary{
				ID:        ix.ID,
				CreatedAt: ix.CreatedAt.Format(time.RFC3339),
				Mode:      ix.Mode,
				Message:   msg,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal interactions: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
