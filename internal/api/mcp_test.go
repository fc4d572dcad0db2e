package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/docent/internal/portfolio"
	"github.com/kalambet/docent/internal/storage"
)

func newTestMCPDeps(t *testing.T, chatter *fakeChatter) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return MCPDeps{
		Store:      store,
		Portfolios: portfolio.NewManager(store),
		Chatter:    chatter,
		Model:      "openai/gpt-4o-mini",
	}, store
}

func savePortfolio(t *testing.T, store *storage.Store, id string, p *portfolio.Portfolio) {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SavePortfolio(id, string(data)); err != nil {
		t.Fatal(err)
	}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestMCPTool_AskPortfolio_VerifiedAnswer(t *testing.T) {
	chatter := &fakeChatter{reply: "생성된 답변"}
	deps, store := newTestMCPDeps(t, chatter)
	savePortfolio(t, store, "p1", &portfolio.Portfolio{
		Name:        "김지원",
		ChatAnswers: map[string]string{"best_project": "결제 시스템"},
	})
	handler := mcpAskPortfolio(deps)

	req := makeCallToolRequest("ask_portfolio", map[string]interface{}{
		"portfolio_id": "p1",
		"question":     "best_project",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if got := toolText(t, result); got != "결제 시스템" {
		t.Errorf("expected verified answer, got %q", got)
	}
	if chatter.lastMessages != nil {
		t.Error("verified answer must not reach the model")
	}
}

func TestMCPTool_AskPortfolio_CatalogKeyWithoutAnswer(t *testing.T) {
	chatter := &fakeChatter{reply: "주력 스택은 Go입니다."}
	deps, store := newTestMCPDeps(t, chatter)
	savePortfolio(t, store, "p1", &portfolio.Portfolio{Name: "김지원"})
	handler := mcpAskPortfolio(deps)

	req := makeCallToolRequest("ask_portfolio", map[string]interface{}{
		"portfolio_id": "p1",
		"question":     "main_stack",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := toolText(t, result); got != "주력 스택은 Go입니다." {
		t.Errorf("unexpected reply %q", got)
	}
	// The full catalog question text goes to the model, not the raw key.
	if !strings.Contains(chatter.lastMessages[1].Content, "기술 스택(Main Skill)") {
		t.Errorf("expected expanded question text, got %q", chatter.lastMessages[1].Content)
	}
	if !strings.Contains(chatter.lastMessages[0].Content, "이름: 김지원") {
		t.Error("system prompt should embed the compiled context")
	}
}

func TestMCPTool_AskPortfolio_UpstreamError(t *testing.T) {
	chatter := &fakeChatter{err: errors.New("down")}
	deps, store := newTestMCPDeps(t, chatter)
	savePortfolio(t, store, "p1", &portfolio.Portfolio{Name: "김지원"})
	handler := mcpAskPortfolio(deps)

	req := makeCallToolRequest("ask_portfolio", map[string]interface{}{
		"portfolio_id": "p1",
		"question":     "자유 질문",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error on upstream failure")
	}
}

func TestMCPTool_AskPortfolio_MissingPortfolio(t *testing.T) {
	deps, _ := newTestMCPDeps(t, &fakeChatter{})
	handler := mcpAskPortfolio(deps)

	req := makeCallToolRequest("ask_portfolio", map[string]interface{}{
		"portfolio_id": "missing",
		"question":     "q",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing portfolio")
	}
}

func TestMCPTool_SetChatAnswer(t *testing.T) {
	deps, store := newTestMCPDeps(t, &fakeChatter{})
	savePortfolio(t, store, "p1", &portfolio.Portfolio{Name: "김지원"})
	handler := mcpSetChatAnswer(deps)

	req := makeCallToolRequest("set_chat_answer", map[string]interface{}{
		"portfolio_id": "p1",
		"key":          "best_project",
		"value":        "결제 시스템",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	p, err := deps.Portfolios.Get("p1")
	if err != nil {
		t.Fatal(err)
	}
	if p.ChatAnswers["best_project"] != "결제 시스템" {
		t.Errorf("answer not stored: %+v", p.ChatAnswers)
	}
}

func TestMCPTool_SetChatAnswer_UnknownKey(t *testing.T) {
	deps, store := newTestMCPDeps(t, &fakeChatter{})
	savePortfolio(t, store, "p1", &portfolio.Portfolio{})
	handler := mcpSetChatAnswer(deps)

	req := makeCallToolRequest("set_chat_answer", map[string]interface{}{
		"portfolio_id": "p1",
		"key":          "nope",
		"value":        "v",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for unknown question key")
	}
}

func TestMCPResource_Catalog(t *testing.T) {
	handler := mcpResourceCatalog()

	contents, err := handler(context.Background(), makeReadResourceRequest("docent://catalog"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var cats []struct {
		ID        string `json:"id"`
		Questions []struct {
			Key string `json:"key"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(tc.Text), &cats); err != nil {
		t.Fatalf("invalid catalog JSON: %v", err)
	}
	if len(cats) != 3 || len(cats[0].Questions) != 4 {
		t.Errorf("unexpected catalog shape: %s", tc.Text)
	}
}
