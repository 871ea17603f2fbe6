package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/shalom-dev/support-agent/internal/models"
	"github.com/shalom-dev/support-agent/internal/repository"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompletions struct {
	responses []*openai.ChatCompletion
	calls     []openai.ChatCompletionNewParams
	err       error
}

func (f *fakeCompletions) New(_ context.Context, params openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.calls) > len(f.responses) {
		return nil, fmt.Errorf("no scripted response for call %d", len(f.calls))
	}
	return f.responses[len(f.calls)-1], nil
}

// Responses are decoded from wire-shaped JSON so the SDK structs carry
// the same metadata they would after a real API call.
func completionFromJSON(t *testing.T, raw string) *openai.ChatCompletion {
	t.Helper()
	var c openai.ChatCompletion
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	return &c
}

func answerCompletion(t *testing.T, content string) *openai.ChatCompletion {
	t.Helper()
	return completionFromJSON(t, fmt.Sprintf(
		`{"choices":[{"message":{"role":"assistant","content":%s}}]}`,
		strconv.Quote(content),
	))
}

type scriptedToolCall struct {
	id        string
	name      string
	arguments string
}

func toolCallCompletion(t *testing.T, calls ...scriptedToolCall) *openai.ChatCompletion {
	t.Helper()
	encoded := make([]string, len(calls))
	for i, c := range calls {
		encoded[i] = fmt.Sprintf(
			`{"id":%s,"type":"function","function":{"name":%s,"arguments":%s}}`,
			strconv.Quote(c.id), strconv.Quote(c.name), strconv.Quote(c.arguments),
		)
	}
	raw := `{"choices":[{"message":{"role":"assistant","tool_calls":[`
	for i, e := range encoded {
		if i > 0 {
			raw += ","
		}
		raw += e
	}
	raw += `]}}]}`
	return completionFromJSON(t, raw)
}

type fakeAccounts struct {
	users  map[int64]*models.User
	err    error
	events *[]string
}

func (f *fakeAccounts) GetByID(_ context.Context, userID int64) (*models.User, error) {
	if f.events != nil {
		*f.events = append(*f.events, "accounts.GetByID")
	}
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

type fakeKnowledge struct {
	matches []*models.FaqMatch
	err     error
	queries []string
	topKs   []int
	events  *[]string
}

func (f *fakeKnowledge) Search(_ context.Context, query string, topK int) ([]*models.FaqMatch, error) {
	if f.events != nil {
		*f.events = append(*f.events, "knowledge.Search")
	}
	f.queries = append(f.queries, query)
	f.topKs = append(f.topKs, topK)
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func testDeps(accounts *fakeAccounts, knowledge *fakeKnowledge) *Dependencies {
	return &Dependencies{UserID: 1, Accounts: accounts, Knowledge: knowledge}
}

func alice() map[int64]*models.User {
	return map[int64]*models.User{
		1: {
			UserID:           1,
			Name:             "Alice",
			AccountStatus:    models.AccountStatusActive,
			SubscriptionPlan: models.PlanPremium,
		},
	}
}

func newTestAgent(completions *fakeCompletions, retries int) *Agent {
	registry := NewRegistry(3, zap.NewNop())
	return New(completions, registry, Config{Model: "gpt-4o", Retries: retries}, zap.NewNop())
}

func systemContent(t *testing.T, msg openai.ChatCompletionMessageParamUnion) string {
	t.Helper()
	require.NotNil(t, msg.OfSystem)
	return msg.OfSystem.Content.OfString.Value
}

func TestRunDirectAnswer(t *testing.T) {
	completions := &fakeCompletions{responses: []*openai.ChatCompletion{
		answerCompletion(t, `{"support_advice":"Reset it from settings.","escalation_required":false,"risk_level":1}`),
	}}
	agent := newTestAgent(completions, 2)

	result, err := agent.Run(context.Background(), testDeps(&fakeAccounts{users: alice()}, &fakeKnowledge{}), "How do I reset my password?")
	require.NoError(t, err)

	assert.Equal(t, "Reset it from settings.", result.SupportAdvice)
	assert.False(t, result.EscalationRequired)
	assert.Equal(t, 1, result.RiskLevel)

	require.Len(t, completions.calls, 1)
	first := completions.calls[0]
	require.Len(t, first.Messages, 3)
	assert.Contains(t, systemContent(t, first.Messages[1]), `User name is "Alice".`)
	assert.Len(t, first.Tools, 3)
}

func TestRunExecutesToolCallsInIssuedOrder(t *testing.T) {
	var events []string
	accounts := &fakeAccounts{users: alice(), events: &events}
	knowledge := &fakeKnowledge{events: &events}

	completions := &fakeCompletions{responses: []*openai.ChatCompletion{
		toolCallCompletion(t,
			scriptedToolCall{id: "call_1", name: "check_account_status", arguments: `{}`},
			scriptedToolCall{id: "call_2", name: "faq_search", arguments: `{"query":"refund policy"}`},
		),
		answerCompletion(t, `{"support_advice":"You have 30 days.","escalation_required":false,"risk_level":0}`),
	}}
	agent := newTestAgent(completions, 2)

	result, err := agent.Run(context.Background(), testDeps(accounts, knowledge), "Can I get a refund?")
	require.NoError(t, err)
	assert.Equal(t, "You have 30 days.", result.SupportAdvice)

	// First GetByID is the account context, then the two tool calls in
	// the order the model issued them.
	assert.Equal(t, []string{"accounts.GetByID", "accounts.GetByID", "knowledge.Search"}, events)
	assert.Equal(t, []string{"refund policy"}, knowledge.queries)
	assert.Equal(t, []int{3}, knowledge.topKs)

	require.Len(t, completions.calls, 2)
	// system x2 + user + assistant tool request + two tool results.
	assert.Len(t, completions.calls[1].Messages, 6)
}

func TestRunValidationRetry(t *testing.T) {
	completions := &fakeCompletions{responses: []*openai.ChatCompletion{
		answerCompletion(t, `{"support_advice":"Escalating.","escalation_required":true,"risk_level":15}`),
		answerCompletion(t, `{"support_advice":"Escalating.","escalation_required":true,"risk_level":7}`),
	}}
	agent := newTestAgent(completions, 2)

	result, err := agent.Run(context.Background(), testDeps(&fakeAccounts{users: alice()}, &fakeKnowledge{}), "I never received my order")
	require.NoError(t, err)
	assert.True(t, result.EscalationRequired)
	assert.Equal(t, 7, result.RiskLevel)

	require.Len(t, completions.calls, 2)
	retryMessages := completions.calls[1].Messages
	require.Len(t, retryMessages, 5)
	last := retryMessages[4]
	require.NotNil(t, last.OfUser)
	assert.Contains(t, last.OfUser.Content.OfString.Value, "rejected")
	assert.Contains(t, last.OfUser.Content.OfString.Value, "risk_level")
}

func TestRunRetryBudgetExhausted(t *testing.T) {
	bad := `{"support_advice":"","escalation_required":false,"risk_level":2}`
	completions := &fakeCompletions{responses: []*openai.ChatCompletion{
		answerCompletion(t, bad),
		answerCompletion(t, bad),
		answerCompletion(t, bad),
	}}
	agent := newTestAgent(completions, 2)

	_, err := agent.Run(context.Background(), testDeps(&fakeAccounts{users: alice()}, &fakeKnowledge{}), "help")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetryBudgetExhausted)
	assert.Contains(t, err.Error(), "support_advice")
	assert.Len(t, completions.calls, 3)
}

func TestRunUnknownUserStillAnswers(t *testing.T) {
	completions := &fakeCompletions{responses: []*openai.ChatCompletion{
		answerCompletion(t, `{"support_advice":"Please verify your account email.","escalation_required":false,"risk_level":2}`),
	}}
	agent := newTestAgent(completions, 2)

	result, err := agent.Run(context.Background(), testDeps(&fakeAccounts{}, &fakeKnowledge{}), "Where is my invoice?")
	require.NoError(t, err)
	assert.NotEmpty(t, result.SupportAdvice)

	require.Len(t, completions.calls, 1)
	assert.Contains(t, systemContent(t, completions.calls[0].Messages[1]), `User name is "User not found".`)
}

func TestRunModelTransportError(t *testing.T) {
	transportErr := errors.New("connection reset")
	completions := &fakeCompletions{err: transportErr}
	agent := newTestAgent(completions, 2)

	_, err := agent.Run(context.Background(), testDeps(&fakeAccounts{users: alice()}, &fakeKnowledge{}), "help")
	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.Contains(t, err.Error(), "model request failed")
}

func TestRunToolTransportErrorIsFatal(t *testing.T) {
	knowledge := &fakeKnowledge{err: errors.New("db down")}
	completions := &fakeCompletions{responses: []*openai.ChatCompletion{
		toolCallCompletion(t, scriptedToolCall{id: "call_1", name: "faq_search", arguments: `{"query":"refund"}`}),
	}}
	agent := newTestAgent(completions, 2)

	_, err := agent.Run(context.Background(), testDeps(&fakeAccounts{users: alice()}, knowledge), "refund?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool faq_search failed")
	assert.Len(t, completions.calls, 1)
}

func TestRunAccountContextTransportError(t *testing.T) {
	accounts := &fakeAccounts{err: errors.New("db down")}
	completions := &fakeCompletions{}
	agent := newTestAgent(completions, 2)

	_, err := agent.Run(context.Background(), testDeps(accounts, &fakeKnowledge{}), "help")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load account context")
	assert.Empty(t, completions.calls)
}
