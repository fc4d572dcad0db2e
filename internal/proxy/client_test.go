package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatOK(content string) string {
	b, _ := json.Marshal(content)
	return `{"choices": [{"message": {"role": "assistant", "content": ` + string(b) + `}}]}`
}

func TestChat(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(chatOK("안녕하세요!")))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", srv.URL)
	reply, err := c.Chat(context.Background(), "openai/gpt-4o-mini", []Message{
		{Role: "system", Content: "prompt"},
		{Role: "user", Content: "질문"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "안녕하세요!" {
		t.Errorf("unexpected reply %q", reply)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotReq.Model != "openai/gpt-4o-mini" || len(gotReq.Messages) != 2 {
		t.Errorf("unexpected request %+v", gotReq)
	}
}

func TestChatRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(chatOK("ok")))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", srv.URL)
	reply, err := c.Chat(context.Background(), "m", []Message{{Role: "user", Content: "q"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "ok" || attempts != 3 {
		t.Errorf("expected success on third attempt, got reply=%q attempts=%d", reply, attempts)
	}
}

func TestChatExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", srv.URL)
	_, err := c.Chat(context.Background(), "m", []Message{{Role: "user", Content: "q"}})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected rate limit error, got %v", err)
	}
}

func TestChatNonRetryableError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", srv.URL)
	_, err := c.Chat(context.Background(), "m", []Message{{Role: "user", Content: "q"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("non-429 failures must not be retried, got %d attempts", attempts)
	}
}

func TestChatUpstreamErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "model not found", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", srv.URL)
	_, err := c.Chat(context.Background(), "m", []Message{{Role: "user", Content: "q"}})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Errorf("expected upstream error message, got %v", err)
	}
}

func TestChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", srv.URL)
	_, err := c.Chat(context.Background(), "m", []Message{{Role: "user", Content: "q"}})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Errorf("expected no-choices error, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"data": [{"id": "openai/gpt-4o-mini"}, {"id": "anthropic/claude-3-haiku"}]}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", srv.URL)
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0].ID != "openai/gpt-4o-mini" {
		t.Errorf("unexpected models %+v", models)
	}
}
