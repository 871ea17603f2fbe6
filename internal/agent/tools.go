package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shalom-dev/support-agent/internal/models"
	"github.com/shalom-dev/support-agent/internal/repository"

	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

const (
	toolCheckAccountStatus    = "check_account_status"
	toolCheckSubscriptionPlan = "check_subscription_plan"
	toolFaqSearch             = "faq_search"
)

// noFaqResults is what the model sees when semantic search matches
// nothing. An empty knowledge base is a low-signal answer, not an
// error.
const noFaqResults = "No relevant FAQ entries found."

type toolHandler func(ctx context.Context, deps *Dependencies, args json.RawMessage) (string, error)

type tool struct {
	name        string
	description string
	parameters  openai.FunctionParameters
	handler     toolHandler
}

// Registry is the closed set of capabilities the model may invoke
// mid-conversation. Every tool is read-only and idempotent, so the
// loop is free to re-execute them across retries without corrupting
// anything. Dispatch validates name and arguments before execution;
// model mistakes come back as textual complaints the model can act on,
// only transport failures surface as errors.
type Registry struct {
	tools       []tool
	byName      map[string]tool
	defaultTopK int
	logger      *zap.Logger
}

func NewRegistry(defaultTopK int, logger *zap.Logger) *Registry {
	r := &Registry{
		defaultTopK: defaultTopK,
		logger:      logger,
	}

	r.tools = []tool{
		{
			name:        toolCheckAccountStatus,
			description: "Look up the account status (active, inactive or suspended) of the user the query is about.",
			parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": map[string]any{},
			},
			handler: r.checkAccountStatus,
		},
		{
			name:        toolCheckSubscriptionPlan,
			description: "Look up the subscription plan (free, basic, premium or enterprise) of the user the query is about.",
			parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": map[string]any{},
			},
			handler: r.checkSubscriptionPlan,
		},
		{
			name:        toolFaqSearch,
			description: "Search the FAQ knowledge base for entries semantically relevant to a query. Use this to ground your advice in documented answers.",
			parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Free-text search query, e.g. the user's question rephrased.",
					},
					"top_k": map[string]any{
						"type":        "integer",
						"description": "How many entries to retrieve. Omit to use the default.",
					},
				},
				"required": []string{"query"},
			},
			handler: r.faqSearch,
		},
	}

	r.byName = make(map[string]tool, len(r.tools))
	for _, t := range r.tools {
		r.byName[t.name] = t
	}

	return r
}

// Manifest returns the tool declarations advertised to the model.
func (r *Registry) Manifest() []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, len(r.tools))
	for i, t := range r.tools {
		params[i] = openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.name,
				Description: openai.String(t.description),
				Parameters:  t.parameters,
			},
		}
	}
	return params
}

// Dispatch executes a model-issued tool call. The returned string is
// fed back into the conversation as the tool result.
func (r *Registry) Dispatch(ctx context.Context, deps *Dependencies, name string, args json.RawMessage) (string, error) {
	t, ok := r.byName[name]
	if !ok {
		r.logger.Warn("Model requested unknown tool", zap.String("tool", name))
		return fmt.Sprintf("Unknown tool %q. Available tools: %s.", name, strings.Join(r.names(), ", ")), nil
	}

	result, err := t.handler(ctx, deps, args)
	if err != nil {
		return "", fmt.Errorf("tool %s failed: %w", name, err)
	}

	return result, nil
}

func (r *Registry) names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.name
	}
	return names
}

func (r *Registry) checkAccountStatus(ctx context.Context, deps *Dependencies, _ json.RawMessage) (string, error) {
	user, err := deps.Accounts.GetByID(ctx, deps.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return userNotFound, nil
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("User account status is %q.", user.AccountStatus), nil
}

func (r *Registry) checkSubscriptionPlan(ctx context.Context, deps *Dependencies, _ json.RawMessage) (string, error) {
	user, err := deps.Accounts.GetByID(ctx, deps.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return userNotFound, nil
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("User subscription plan is %q.", user.SubscriptionPlan), nil
}

func (r *Registry) faqSearch(ctx context.Context, deps *Dependencies, args json.RawMessage) (string, error) {
	var params struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return fmt.Sprintf("Invalid arguments for %s: %v. Pass a JSON object with a \"query\" string.", toolFaqSearch, err), nil
		}
	}
	if strings.TrimSpace(params.Query) == "" {
		return fmt.Sprintf("The %s tool requires a non-empty \"query\" argument.", toolFaqSearch), nil
	}

	topK := params.TopK
	if topK <= 0 {
		topK = r.defaultTopK
	}

	matches, err := deps.Knowledge.Search(ctx, params.Query, topK)
	if err != nil {
		return "", err
	}

	r.logger.Debug("FAQ search completed",
		zap.String("query", params.Query),
		zap.Int("matches", len(matches)),
	)

	return formatFaqMatches(matches), nil
}

// formatFaqMatches renders retrieved entries as one human-readable
// block: question heading, category label, answer body.
func formatFaqMatches(matches []*models.FaqMatch) string {
	if len(matches) == 0 {
		return noFaqResults
	}

	var builder strings.Builder
	builder.WriteString("Relevant FAQ entries:\n\n")

	for _, m := range matches {
		builder.WriteString(fmt.Sprintf("### %s\n", m.Question))
		if m.Category != "" {
			builder.WriteString(fmt.Sprintf("Category: %s\n", m.Category))
		}
		builder.WriteString(m.Answer)
		builder.WriteString("\n\n")
	}

	return strings.TrimRight(builder.String(), "\n")
}
