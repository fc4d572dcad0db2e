package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/docent/internal/api"
	"github.com/kalambet/docent/internal/catalog"
	"github.com/kalambet/docent/internal/composer"
	"github.com/kalambet/docent/internal/config"
	"github.com/kalambet/docent/internal/portfolio"
	"github.com/kalambet/docent/internal/proxy"
	"github.com/kalambet/docent/internal/session"
)

// --- ask ---

// httpAnswerer routes a session's free-text dispatches through the running
// server's /chat endpoint, the same path the web widget uses. It knows which
// stored portfolio the session is about and attributes the exchange.
type httpAnswerer struct {
	client      *apiClient
	portfolioID string
}

func (a *httpAnswerer) Answer(ctx context.Context, req session.AnswerRequest) (string, error) {
	resp, err := a.client.post(ctx, "/chat", api.ChatRequest{
		Message:          req.Message,
		PortfolioContext: req.PortfolioContext,
		IsShared:         req.Shared,
		PortfolioID:      a.portfolioID,
	})
	if err != nil {
		return "", err
	}
	var out api.ChatResponse
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

var askCmd = &cobra.Command{
	Use:   "ask <portfolio-id> <question>",
	Short: "Ask a question about a stored portfolio",
	Long: `Ask a question about a stored portfolio.

The question may be a catalog key (see 'docent questions') or free text.
Catalog questions with a verified owner answer are returned directly;
everything else goes through the answering model.

Examples:
  docent ask 3f2a... best_project
  docent ask 3f2a... "백엔드 경험이 얼마나 되나요?"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		question := strings.Join(args[1:], " ")
		owner, _ := cmd.Flags().GetBool("owner")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		p, err := fetchPortfolio(ctx, client, id)
		if err != nil {
			return err
		}
		if !composer.HasSufficientContext(p) {
			printWarning("portfolio %s has little content; answers may be thin", id)
		}

		mode := session.ModeShared
		if owner {
			mode = session.ModeOwner
		}
		sess := session.New(mode, p, &httpAnswerer{client: client, portfolioID: id})
		sess.Open()
		before := len(sess.Messages())

		if _, ok := catalog.QuestionByKey(question); ok {
			sess.SelectQuestion(ctx, question)
		} else {
			sess.Send(ctx, question)
		}

		for _, m := range sess.Messages()[before:] {
			printSessionMessage(m)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().Bool("owner", false, "ask as the portfolio owner (coach persona)")
}

func fetchPortfolio(ctx context.Context, client *apiClient, id string) (*portfolio.Portfolio, error) {
	resp, err := client.get(ctx, "/portfolio/"+id)
	if err != nil {
		return nil, err
	}
	var p portfolio.Portfolio
	if err := decodeJSON(resp, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- questions ---

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the question catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range catalog.Categories() {
			fmt.Println(colorize(ansiBold, c.Title))
			for _, q := range c.Questions {
				fmt.Printf("  %s  %s\n", colorize(ansiCyan, fmt.Sprintf("%-24s", q.Key)), q.Text)
			}
			fmt.Println()
		}
		return nil
	},
}

// --- portfolio ---

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Manage stored portfolios",
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored portfolio IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/portfolios")
		if err != nil {
			return err
		}

		var list struct {
			IDs []string `json:"ids"`
		}
		if err := decodeJSON(resp, &list); err != nil {
			return err
		}

		if len(list.IDs) == 0 {
			fmt.Println("No portfolios stored.")
			return nil
		}
		for _, id := range list.IDs {
			fmt.Println(id)
		}
		return nil
	},
}

var portfolioShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a portfolio as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/portfolio/"+args[0])
		if err != nil {
			return err
		}

		var p any
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var portfolioImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a portfolio from a JSON file",
	Long: `Import a portfolio from a JSON file.

Creates a new portfolio unless --id is given, in which case the stored
portfolio with that ID is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		var p portfolio.Portfolio
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("invalid portfolio JSON: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		var resp *http.Response
		if id != "" {
			resp, err = client.do(cmd.Context(), "PUT", "/portfolio/"+id, p)
		} else {
			resp, err = client.post(cmd.Context(), "/portfolio", p)
		}
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Stored portfolio %s", result["id"])
		return nil
	},
}

var portfolioSetAnswerCmd = &cobra.Command{
	Use:   "set-answer <id> <key> [value]",
	Short: "Set or clear a verified answer for one catalog question",
	Long: `Set or clear a verified answer for one catalog question.

An omitted or empty value clears the answer, sending the question back to
the answering model. Keys are listed by 'docent questions'.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, key := args[0], args[1]
		value := ""
		if len(args) == 3 {
			value = args[2]
		}

		if _, ok := catalog.QuestionByKey(key); !ok {
			return fmt.Errorf("unknown question key %q (see 'docent questions')", key)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.patch(cmd.Context(), "/portfolio/"+id+"/answers", map[string]string{key: value})
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if value == "" {
			printSuccess("Cleared answer for %s", key)
		} else {
			printSuccess("Set answer for %s", key)
		}
		return nil
	},
}

var portfolioDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored portfolio",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			printWarning("This will delete portfolio %s. Use --confirm to proceed.", args[0])
			return nil
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/portfolio/"+args[0])
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("server returned %d", resp.StatusCode)
		}

		printSuccess("Deleted portfolio %s", args[0])
		return nil
	},
}

func init() {
	portfolioImportCmd.Flags().String("id", "", "replace the portfolio with this ID instead of creating")
	portfolioDeleteCmd.Flags().Bool("confirm", false, "confirm deletion")

	portfolioCmd.AddCommand(portfolioListCmd)
	portfolioCmd.AddCommand(portfolioShowCmd)
	portfolioCmd.AddCommand(portfolioImportCmd)
	portfolioCmd.AddCommand(portfolioSetAnswerCmd)
	portfolioCmd.AddCommand(portfolioDeleteCmd)
}

// --- models ---

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available answering models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		client := proxy.NewClient(cfg.Proxy.OpenRouterAPIKey)
		models, err := client.ListModels(cmd.Context())
		if err != nil {
			return err
		}

		for _, m := range models {
			marker := "  "
			if m.ID == cfg.Proxy.DefaultModel {
				marker = colorize(ansiGreen, "* ")
			}
			fmt.Printf("%s%s\n", marker, m.ID)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(ansiBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Valid keys: ` + strings.Join(config.ValidKeys(), ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
