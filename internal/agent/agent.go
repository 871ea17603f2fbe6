package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// systemPrompt is the static persona. The dynamic account fragment
// from assembleAccountContext is sent as a second system turn.
const systemPrompt = `You are a SaaS support agent. Help users with their account: check subscription plans and account status, search the FAQ knowledge base, and judge whether the query needs to be escalated to an admin.

When you have everything you need, reply with ONLY a JSON object of this exact shape, no prose around it:
{"support_advice": "<advice returned to the user>", "escalation_required": <true or false>, "risk_level": <integer from 0 to 10>}`

// completionClient is the slice of the chat-completions API the loop
// needs. *openai.ChatCompletionService satisfies it; tests substitute
// a scripted fake.
type completionClient interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Config bounds a single run. Retries is the number of
// whole-conversation retries consumed by output validation failures;
// tool calls never consume budget. RunTimeout is the wall-clock
// backstop for the whole run, 0 disables it.
type Config struct {
	Model      string
	Retries    int
	RunTimeout time.Duration
}

// Agent drives the tool-orchestration loop: send the query plus
// assembled context to the model, execute the tool calls it issues,
// feed results back, and repeat until the model emits an answer that
// passes the result contract or the retry budget runs out.
//
// An Agent is stateless across runs and safe for concurrent use; all
// per-run state lives in the conversation transcript and the
// Dependencies value.
type Agent struct {
	completions completionClient
	registry    *Registry
	config      Config
	logger      *zap.Logger
}

func New(completions completionClient, registry *Registry, cfg Config, logger *zap.Logger) *Agent {
	return &Agent{
		completions: completions,
		registry:    registry,
		config:      cfg,
		logger:      logger,
	}
}

// Run answers one support query on behalf of deps.UserID.
func (a *Agent) Run(ctx context.Context, deps *Dependencies, query string) (*SupportResult, error) {
	if a.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.RunTimeout)
		defer cancel()
	}

	runID := uuid.New().String()
	logger := a.logger.With(zap.String("run_id", runID), zap.Int64("user_id", deps.UserID))

	accountContext, err := assembleAccountContext(ctx, deps)
	if err != nil {
		return nil, err
	}

	// The transcript is an explicit ordered sequence of typed turns:
	// system context, user message, assistant tool requests, tool
	// results. Retry complaints are appended, never spliced in.
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.SystemMessage(accountContext),
		openai.UserMessage(query),
	}

	retriesLeft := a.config.Retries

	for {
		completion, err := a.completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(a.config.Model),
			Messages: messages,
			Tools:    a.registry.Manifest(),
		})
		if err != nil {
			return nil, fmt.Errorf("model request failed: %w", err)
		}
		if len(completion.Choices) == 0 {
			return nil, errors.New("model returned no choices")
		}

		message := completion.Choices[0].Message

		if len(message.ToolCalls) > 0 {
			messages = append(messages, message.ToParam())

			// Tool calls run synchronously in the order the model
			// issued them, so each result is visible before the next
			// model turn.
			for _, call := range message.ToolCalls {
				logger.Debug("Executing tool call",
					zap.String("tool", call.Function.Name),
					zap.String("arguments", call.Function.Arguments),
				)

				result, err := a.registry.Dispatch(ctx, deps, call.Function.Name, json.RawMessage(call.Function.Arguments))
				if err != nil {
					return nil, err
				}

				messages = append(messages, openai.ToolMessage(result, call.ID))
			}

			continue
		}

		// Terminal answer: validate against the result contract.
		result, err := parseSupportResult(message.Content)
		if err == nil {
			logger.Info("Support run completed",
				zap.Bool("escalation_required", result.EscalationRequired),
				zap.Int("risk_level", result.RiskLevel),
			)
			return result, nil
		}

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			return nil, err
		}

		if retriesLeft == 0 {
			logger.Warn("Retry budget exhausted", zap.String("last_reason", vErr.Reason))
			return nil, fmt.Errorf("%w: %s", ErrRetryBudgetExhausted, vErr.Reason)
		}
		retriesLeft--

		logger.Info("Model answer rejected, retrying",
			zap.String("reason", vErr.Reason),
			zap.Int("retries_left", retriesLeft),
		)

		// The model never sees a hard crash, only a structured
		// complaint it can act on.
		messages = append(messages,
			message.ToParam(),
			openai.UserMessage("Your previous answer was rejected: "+vErr.Reason+". Respond again with only the corrected JSON object."),
		)
	}
}
