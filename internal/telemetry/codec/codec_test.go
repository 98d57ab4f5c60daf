package codec

import (
	"testing"

	"github.com/chatlens/chatlens/internal/telemetry/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUsage_SnakeCaseAliases(t *testing.T) {
	usage := DecodeUsage(map[string]any{
		"model":             "GPT-4o-Mini",
		"prompt_tokens":     float64(1000),
		"completion_tokens": float64(500),
		"cached_tokens":     float64(100),
		"costUSD":           0.0018,
	})

	assert.Equal(t, "gpt-4o-mini", usage.Model)
	assert.Equal(t, int64(1000), usage.PromptTokens)
	assert.Equal(t, int64(500), usage.CompletionTokens)
	assert.Equal(t, int64(100), usage.CachedTokens)
	require.NotNil(t, usage.CostUSD)
	assert.InDelta(t, 0.0018, *usage.CostUSD, 1e-9)
}

func TestDecodeUsage_CamelCaseAliases(t *testing.T) {
	usage := DecodeUsage(map[string]any{
		"model":            "gpt-4o",
		"promptTokens":     float64(10),
		"completionTokens": float64(20),
		"cachedTokens":     float64(5),
		"cost":             1.5,
	})

	assert.Equal(t, int64(10), usage.PromptTokens)
	assert.Equal(t, int64(20), usage.CompletionTokens)
	assert.Equal(t, int64(5), usage.CachedTokens)
	require.NotNil(t, usage.CostUSD)
	assert.InDelta(t, 1.5, *usage.CostUSD, 1e-9)
}

func TestDecodeUsage_CostUSDWinsOverCost(t *testing.T) {
	usage := DecodeUsage(map[string]any{
		"model":   "gpt-4o",
		"costUSD": 0.25,
		"cost":    9.99,
	})

	require.NotNil(t, usage.CostUSD)
	assert.InDelta(t, 0.25, *usage.CostUSD, 1e-9)
}

func TestDecodeUsage_MissingCostStaysNil(t *testing.T) {
	usage := DecodeUsage(map[string]any{
		"model":         "gpt-4o-mini",
		"prompt_tokens": float64(1000),
	})

	assert.Nil(t, usage.CostUSD)
}

func TestDecodeUsage_GarbageCoercesToZero(t *testing.T) {
	usage := DecodeUsage(map[string]any{
		"model":             nil,
		"prompt_tokens":     "not a number",
		"completion_tokens": []any{1, 2},
		"breakdown":         "not an object",
	})

	assert.Empty(t, usage.Model)
	assert.Zero(t, usage.PromptTokens)
	assert.Zero(t, usage.CompletionTokens)
	assert.Nil(t, usage.Breakdown)
}

func TestDecodeUsage_NumericStrings(t *testing.T) {
	usage := DecodeUsage(map[string]any{
		"model":         "gpt-4o",
		"prompt_tokens": "1200",
		"cost":          "0.5",
	})

	assert.Equal(t, int64(1200), usage.PromptTokens)
	require.NotNil(t, usage.CostUSD)
	assert.InDelta(t, 0.5, *usage.CostUSD, 1e-9)
}

func TestUsageBody_ShapeIsCanonical(t *testing.T) {
	usage := DecodeUsage(map[string]any{
		"model":        "gpt-4o-mini",
		"promptTokens": float64(1000),
	})

	body := UsageBody(usage, 0.0018)

	assert.Equal(t, "usage", body["type"])
	nested, ok := body["usage"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(1000), nested["prompt_tokens"])
	assert.Equal(t, 0.0018, nested["costUSD"])
	assert.Nil(t, nested["breakdown"])
}

func TestUserText_FieldPriority(t *testing.T) {
	assert.Equal(t, "hi", UserText(map[string]any{"message": "hi", "text": "ignored"}))
	assert.Equal(t, "fallback", UserText(map[string]any{"prompt": " fallback "}))
	assert.Empty(t, UserText(map[string]any{"message": "   "}))
	assert.Empty(t, UserText(nil))
}

func TestLeadBody_NilTagsBecomeEmptyList(t *testing.T) {
	body := LeadBody(domain.LeadInput{Name: "Ada", Email: "ada@example.com"})
	assert.Equal(t, []string{}, body["tags"])
}

func TestConversationBody(t *testing.T) {
	data := map[string]any{"message": "hello"}
	body := ConversationBody("sess-1", data)

	assert.Equal(t, "conversation", body["type"])
	assert.Equal(t, "sess-1", body["sessionId"])
	assert.Equal(t, data, body["data"])
}
