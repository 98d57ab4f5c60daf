// Package pricing converts raw usage quantities into USD cost breakdowns.
//
// Every function is total over its input domain: an unrecognized model or
// billing key degrades to zero cost with an Unknown flag instead of an error,
// so a pricing gap can never block a metered call from completing.
package pricing

import "strings"

// TextRate holds per-1K-token USD rates for one model tier.
type TextRate struct {
	PromptPer1K     float64
	CachedPer1K     float64
	CompletionPer1K float64
}

// textRates maps base model tiers to token rates. Dated snapshot names
// (gpt-4o-mini-2024-07-18) bill identically to their base tier through
// longest-prefix resolution, so they need no entries of their own.
var textRates = map[string]TextRate{
	"gpt-5":         {PromptPer1K: 0.00125, CachedPer1K: 0.000125, CompletionPer1K: 0.01},
	"gpt-5-mini":    {PromptPer1K: 0.00025, CachedPer1K: 0.000025, CompletionPer1K: 0.002},
	"gpt-5-nano":    {PromptPer1K: 0.00005, CachedPer1K: 0.000005, CompletionPer1K: 0.0004},
	"gpt-4.1":       {PromptPer1K: 0.002, CachedPer1K: 0.0005, CompletionPer1K: 0.008},
	"gpt-4.1-mini":  {PromptPer1K: 0.0004, CachedPer1K: 0.0001, CompletionPer1K: 0.0016},
	"gpt-4.1-nano":  {PromptPer1K: 0.0001, CachedPer1K: 0.000025, CompletionPer1K: 0.0004},
	"gpt-4o":        {PromptPer1K: 0.0025, CachedPer1K: 0.00125, CompletionPer1K: 0.01},
	"gpt-4o-mini":   {PromptPer1K: 0.0006, CachedPer1K: 0.0003, CompletionPer1K: 0.0024},
	"gpt-3.5-turbo": {PromptPer1K: 0.0005, CachedPer1K: 0, CompletionPer1K: 0.0015},
	"o1":            {PromptPer1K: 0.015, CachedPer1K: 0.0075, CompletionPer1K: 0.06},
	"o1-pro":        {PromptPer1K: 0.15, CachedPer1K: 0, CompletionPer1K: 0.6},
	"o3":            {PromptPer1K: 0.002, CachedPer1K: 0.0005, CompletionPer1K: 0.008},
	"o4-mini":       {PromptPer1K: 0.0011, CachedPer1K: 0.000275, CompletionPer1K: 0.0044},
}

// TextCost is the cost breakdown for one text completion.
type TextCost struct {
	PromptUSD     float64 `json:"promptUSD"`
	CachedUSD     float64 `json:"cachedUSD"`
	CompletionUSD float64 `json:"completionUSD"`
	TotalUSD      float64 `json:"totalUSD"`
	ResolvedModel string  `json:"resolvedModel"`
	Unknown       bool    `json:"unknown"`
}

// CostForText prices a text completion by token counts. The model identifier
// is matched case-insensitively against the rate table with longest-prefix
// semantics; no match yields zero cost and Unknown=true.
func CostForText(model string, promptTokens, completionTokens, cachedTokens int) TextCost {
	key, rate, ok := resolveTextRate(model)
	if !ok {
		return TextCost{Unknown: true}
	}

	prompt := round6(float64(max(promptTokens, 0)) / 1000 * rate.PromptPer1K)
	cached := round6(float64(max(cachedTokens, 0)) / 1000 * rate.CachedPer1K)
	completion := round6(float64(max(completionTokens, 0)) / 1000 * rate.CompletionPer1K)

	return TextCost{
		PromptUSD:     prompt,
		CachedUSD:     cached,
		CompletionUSD: completion,
		TotalUSD:      round6(prompt + cached + completion),
		ResolvedModel: key,
	}
}

// resolveTextRate picks the longest table key that prefixes the model name,
// so "gpt-4o-mini-2024-07-18" lands on "gpt-4o-mini", not "gpt-4o".
func resolveTextRate(model string) (string, TextRate, bool) {
	model = strings.ToLower(strings.TrimSpace(model))
	var (
		bestKey  string
		bestRate TextRate
		found    bool
	)
	for key, rate := range textRates {
		if strings.HasPrefix(model, key) && len(key) > len(bestKey) {
			bestKey, bestRate, found = key, rate, true
		}
	}
	return bestKey, bestRate, found
}
