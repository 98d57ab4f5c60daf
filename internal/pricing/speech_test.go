package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostForTTSCharacters(t *testing.T) {
	tests := []struct {
		name       string
		model      string
		characters float64
		wantUSD    float64
		wantTier   string
	}{
		{
			name:       "standard tier",
			model:      "tts-1",
			characters: 1_000_000,
			wantUSD:    15,
			wantTier:   "standard",
		},
		{
			name:       "hd tier by substring",
			model:      "tts-1-hd",
			characters: 1_000_000,
			wantUSD:    30,
			wantTier:   "hd",
		},
		{
			name:       "fractional characters floor",
			model:      "tts-1",
			characters: 100.9,
			wantUSD:    0.0015,
			wantTier:   "standard",
		},
		{
			name:       "negative clamps to zero",
			model:      "tts-1",
			characters: -500,
			wantUSD:    0,
			wantTier:   "standard",
		},
		{
			name:       "hd detection is case insensitive",
			model:      "TTS-1-HD",
			characters: 2_000_000,
			wantUSD:    60,
			wantTier:   "hd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CostForTTSCharacters(tt.model, tt.characters)
			assert.Equal(t, tt.wantTier, got.Tier)
			assert.InDelta(t, tt.wantUSD, got.TotalUSD, 1e-9)
		})
	}
}
