package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostForAudioMinutes(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		minutes   float64
		direction Direction
		wantUSD   float64
		unknown   bool
	}{
		{
			name:      "whisper input",
			model:     "whisper-1",
			minutes:   10,
			direction: DirectionInput,
			wantUSD:   0.06,
		},
		{
			name:      "transcribe input",
			model:     "gpt-4o-transcribe",
			minutes:   1,
			direction: DirectionInput,
			wantUSD:   0.006,
		},
		{
			name:      "dated variant resolves by prefix",
			model:     "gpt-4o-mini-transcribe-2025-03-20",
			minutes:   1,
			direction: DirectionInput,
			wantUSD:   0.003,
		},
		{
			name:      "whisper has no output rate",
			model:     "whisper-1",
			minutes:   10,
			direction: DirectionOutput,
			wantUSD:   0,
		},
		{
			name:      "unknown model",
			model:     "eleven-labs-v2",
			minutes:   10,
			direction: DirectionInput,
			wantUSD:   0,
			unknown:   true,
		},
		{
			name:      "negative minutes clamp to zero",
			model:     "whisper-1",
			minutes:   -5,
			direction: DirectionInput,
			wantUSD:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CostForAudioMinutes(tt.model, tt.minutes, tt.direction)
			assert.Equal(t, tt.unknown, got.Unknown)
			assert.InDelta(t, tt.wantUSD, got.TotalUSD, 1e-9)
		})
	}
}
