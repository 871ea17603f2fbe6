package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shalom-dev/support-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManifestDeclaresAllTools(t *testing.T) {
	registry := NewRegistry(3, zap.NewNop())

	manifest := registry.Manifest()
	require.Len(t, manifest, 3)
	assert.Equal(t, "check_account_status", manifest[0].Function.Name)
	assert.Equal(t, "check_subscription_plan", manifest[1].Function.Name)
	assert.Equal(t, "faq_search", manifest[2].Function.Name)
	assert.Equal(t, []string{"query"}, manifest[2].Function.Parameters["required"])
}

func TestDispatchUnknownTool(t *testing.T) {
	registry := NewRegistry(3, zap.NewNop())

	result, err := registry.Dispatch(context.Background(), testDeps(&fakeAccounts{}, &fakeKnowledge{}), "delete_account", nil)
	require.NoError(t, err)
	assert.Contains(t, result, `Unknown tool "delete_account"`)
	assert.Contains(t, result, "faq_search")
}

func TestCheckAccountStatus(t *testing.T) {
	registry := NewRegistry(3, zap.NewNop())

	t.Run("known user", func(t *testing.T) {
		deps := testDeps(&fakeAccounts{users: alice()}, &fakeKnowledge{})
		result, err := registry.Dispatch(context.Background(), deps, "check_account_status", nil)
		require.NoError(t, err)
		assert.Equal(t, `User account status is "active".`, result)
	})

	t.Run("unknown user", func(t *testing.T) {
		deps := testDeps(&fakeAccounts{}, &fakeKnowledge{})
		result, err := registry.Dispatch(context.Background(), deps, "check_account_status", nil)
		require.NoError(t, err)
		assert.Equal(t, "User not found", result)
	})
}

func TestCheckSubscriptionPlan(t *testing.T) {
	registry := NewRegistry(3, zap.NewNop())

	deps := testDeps(&fakeAccounts{users: alice()}, &fakeKnowledge{})
	result, err := registry.Dispatch(context.Background(), deps, "check_subscription_plan", nil)
	require.NoError(t, err)
	assert.Equal(t, `User subscription plan is "premium".`, result)
}

func TestFaqSearchArguments(t *testing.T) {
	registry := NewRegistry(3, zap.NewNop())

	t.Run("malformed json", func(t *testing.T) {
		knowledge := &fakeKnowledge{}
		result, err := registry.Dispatch(context.Background(), testDeps(&fakeAccounts{}, knowledge), "faq_search", json.RawMessage(`{"query":`))
		require.NoError(t, err)
		assert.Contains(t, result, "Invalid arguments for faq_search")
		assert.Empty(t, knowledge.queries)
	})

	t.Run("missing query", func(t *testing.T) {
		knowledge := &fakeKnowledge{}
		result, err := registry.Dispatch(context.Background(), testDeps(&fakeAccounts{}, knowledge), "faq_search", json.RawMessage(`{}`))
		require.NoError(t, err)
		assert.Contains(t, result, `non-empty "query"`)
		assert.Empty(t, knowledge.queries)
	})

	t.Run("default top_k", func(t *testing.T) {
		knowledge := &fakeKnowledge{}
		_, err := registry.Dispatch(context.Background(), testDeps(&fakeAccounts{}, knowledge), "faq_search", json.RawMessage(`{"query":"refund"}`))
		require.NoError(t, err)
		assert.Equal(t, []int{3}, knowledge.topKs)
	})

	t.Run("explicit top_k", func(t *testing.T) {
		knowledge := &fakeKnowledge{}
		_, err := registry.Dispatch(context.Background(), testDeps(&fakeAccounts{}, knowledge), "faq_search", json.RawMessage(`{"query":"refund","top_k":5}`))
		require.NoError(t, err)
		assert.Equal(t, []int{5}, knowledge.topKs)
	})
}

func TestFaqSearchTransportError(t *testing.T) {
	registry := NewRegistry(3, zap.NewNop())
	knowledge := &fakeKnowledge{err: errors.New("db down")}

	_, err := registry.Dispatch(context.Background(), testDeps(&fakeAccounts{}, knowledge), "faq_search", json.RawMessage(`{"query":"refund"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool faq_search failed")
}

func TestFormatFaqMatches(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "No relevant FAQ entries found.", formatFaqMatches(nil))
	})

	t.Run("matches", func(t *testing.T) {
		matches := []*models.FaqMatch{
			{
				Faq: models.Faq{
					Question: "What is the refund policy?",
					Answer:   "We offer a 30-day money-back guarantee for all subscription plans.",
					Category: "billing",
				},
				Distance: 0.12,
			},
			{
				Faq: models.Faq{
					Question: "How do I reset my password?",
					Answer:   "Use the settings page.",
				},
				Distance: 0.4,
			},
		}

		formatted := formatFaqMatches(matches)
		assert.Contains(t, formatted, "Relevant FAQ entries:")
		assert.Contains(t, formatted, "### What is the refund policy?")
		assert.Contains(t, formatted, "Category: billing")
		assert.Contains(t, formatted, "30-day money-back guarantee")
		assert.Contains(t, formatted, "### How do I reset my password?")
		assert.NotContains(t, formatted, "Category: \n")
		assert.NotRegexp(t, `\n$`, formatted)
	})
}
