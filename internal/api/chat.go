package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/docent/internal/composer"
	"github.com/kalambet/docent/internal/portfolio"
	"github.com/kalambet/docent/internal/proxy"
	"github.com/kalambet/docent/internal/storage"
)

// ChatRequest is the answering-service contract consumed by chat widgets:
// the visitor's question, the serialized portfolio context, and the mode flag.
// PortfolioID is optional; clients that know which stored portfolio they are
// asking about send it so the interaction log can attribute the exchange.
type ChatRequest struct {
	Message          string `json:"message"`
	PortfolioContext string `json:"portfolio_context"`
	IsShared         bool   `json:"is_shared"`
	PortfolioID      string `json:"portfolio_id,omitempty"`
}

// ChatResponse carries the generated reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Usage counter names, one per persona.
const (
	promptTypeDocent = "mumu"
	promptTypeCoach  = "popo"
)

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		req.Message = strings.TrimSpace(req.Message)
		if req.Message == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required and must not be empty")
			return
		}

		// The context arrives as a string; JSON-shaped content decodes into a
		// structured portfolio, anything else degrades to an empty snapshot.
		p := portfolio.Decode(req.PortfolioContext)
		contextDoc := composer.BuildContext(p)

		var system string
		promptType := promptTypeCoach
		if req.IsShared {
			system = composer.BuildSystemPrompt(contextDoc)
			promptType = promptTypeDocent
		} else {
			system = composer.BuildCoachPrompt(contextDoc)
		}

		reply, err := deps.Chatter.Chat(r.Context(), deps.Model, []proxy.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: req.Message},
		})

		status := "completed"
		if err != nil {
			status = "failed"
		}
		logInteraction(deps, req, reply, status, promptType)

		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "upstream error: %v", err)
			return
		}

		writeJSON(w, ChatResponse{Reply: reply})
	}
}

// logInteraction records the exchange and bumps the persona's usage counter.
// Logging failures are reported to operators but never to the visitor.
func logInteraction(deps Deps, req ChatRequest, reply, status, promptType string) {
	if deps.Store == nil {
		return
	}

	if err := deps.Store.SaveInteraction(storage.Interaction{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now(),
		PortfolioID: req.PortfolioID,
		Mode:        promptType,
		Message:     req.Message,
		Reply:       reply,
		Status:      status,
	}); err != nil {
		slog.Warn("saving interaction failed", "error", err)
	}

	if err := deps.Store.IncrementUsage(promptType); err != nil {
		slog.Warn("incrementing usage failed", "error", err)
	}
}
