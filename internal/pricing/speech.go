package pricing

import (
	"math"
	"strings"
)

// Synthesized speech bills per million characters across two quality tiers.
const (
	ttsStandardPerMillionChars = 15.0
	ttsHDPerMillionChars       = 30.0
)

// TTSCost is the cost of a speech synthesis request.
type TTSCost struct {
	TotalUSD            float64 `json:"totalUSD"`
	RatePerMillionChars float64 `json:"ratePerMillionChars"`
	Tier                string  `json:"tier"`
}

// CostForTTSCharacters prices synthesized speech by character count. The model
// name normalizes to a quality tier by case-insensitive substring: anything
// carrying "hd" bills at the HD rate, everything else at standard.
func CostForTTSCharacters(model string, characters float64) TTSCost {
	chars := math.Floor(characters)
	if chars < 0 {
		chars = 0
	}

	tier := "standard"
	rate := ttsStandardPerMillionChars
	if strings.Contains(strings.ToLower(model), "hd") {
		tier = "hd"
		rate = ttsHDPerMillionChars
	}

	return TTSCost{
		TotalUSD:            round6(chars / 1_000_000 * rate),
		RatePerMillionChars: rate,
		Tier:                tier,
	}
}
