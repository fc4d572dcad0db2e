// Package api exposes the docent HTTP surface: the public answering endpoint
// consumed by chat widgets, and token-guarded portfolio management for the
// owner tooling.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kalambet/docent/internal/portfolio"
	"github.com/kalambet/docent/internal/proxy"
	"github.com/kalambet/docent/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Chatter is the upstream completion capability the handlers need.
// Implemented by proxy.Client.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []proxy.Message) (string, error)
}

// Deps bundles the handler dependencies.
type Deps struct {
	Chatter    Chatter
	Model      string
	Store      *storage.Store
	Portfolios *portfolio.Manager
	APIToken   string
}

// NewHandler returns the docent REST API. /chat and /health are public;
// portfolio mutation and stats require the local bearer token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/chat", handleChat(deps))
	r.Get("/portfolio/{id}", handleGetPortfolio(deps))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.APIToken))
		r.Post("/portfolio", handleCreatePortfolio(deps))
		r.Put("/portfolio/{id}", handlePutPortfolio(deps))
		r.Patch("/portfolio/{id}/answers", handlePatchAnswers(deps))
		r.Delete("/portfolio/{id}", handleDeletePortfolio(deps))
		r.Get("/portfolios", handleListPortfolios(deps))
		r.Get("/stats", handleStats(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleGetPortfolio(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, err := deps.Portfolios.Get(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "not_found_error", "portfolio %q not found", id)
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "loading portfolio: %v", err)
			return
		}
		writeJSON(w, p)
	}
}

func handleCreatePortfolio(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := decodePortfolioBody(w, r)
		if !ok {
			return
		}
		id := uuid.New().String()
		if err := deps.Portfolios.Save(id, p); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving portfolio: %v", err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, map[string]string{"id": id})
	}
}

func handlePutPortfolio(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, ok := decodePortfolioBody(w, r)
		if !ok {
			return
		}
		if err := deps.Portfolios.Save(id, p); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving portfolio: %v", err)
			return
		}
		writeJSON(w, map[string]string{"id": id})
	}
}

func handlePatchAnswers(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var answers map[string]string
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		for key, value := range answers {
			if err := deps.Portfolios.SetAnswer(id, key, value); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					httpError(w, http.StatusNotFound, "not_found_error", "portfolio %q not found", id)
					return
				}
				httpError(w, http.StatusInternalServerError, "api_error", "updating answer %q: %v", key, err)
				return
			}
		}
		writeJSON(w, map[string]string{"id": id})
	}
}

func handleDeletePortfolio(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := deps.Portfolios.Delete(id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "not_found_error", "portfolio %q not found", id)
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "deleting portfolio: %v", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListPortfolios(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := deps.Store.ListPortfolioIDs()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing portfolios: %v", err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, map[string][]string{"ids": ids})
	}
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usage, err := deps.Store.GetUsage()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading usage: %v", err)
			return
		}

		counts := make(map[string]int, len(usage))
		for _, u := range usage {
			counts[u.PromptType] = u.Count
		}

		recent, err := deps.Store.GetRecentInteractions(20)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading interactions: %v", err)
			return
		}

		type interactionView struct {
			ID          string `json:"id"`
			CreatedAt   string `json:"created_at"`
			PortfolioID string `json:"portfolio_id,omitempty"`
			Mode        string `json:"mode"`
			Message     string `json:"message"`
			Status      string `json:"status"`
		}
		views := make([]interactionView, 0, len(recent))
		for _, i := range recent {
			views = append(views, interactionView{
				ID:          i.ID,
				CreatedAt:   i.CreatedAt.UTC().Format(time.RFC3339),
				PortfolioID: i.PortfolioID,
				Mode:        i.Mode,
				Message:     i.Message,
				Status:      i.Status,
			})
		}

		writeJSON(w, map[string]any{
			"usage":               counts,
			"recent_interactions": views,
		})
	}
}

func decodePortfolioBody(w http.ResponseWriter, r *http.Request) (*portfolio.Portfolio, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var p portfolio.Portfolio
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return nil, false
	}
	return &p, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
