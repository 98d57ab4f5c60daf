package pricing

import "strings"

// Direction distinguishes transcription input from synthesized speech output.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// AudioRate stores per-minute USD rates per direction. A zero rate means the
// model does not bill that direction.
type AudioRate struct {
	InputPerMinute  float64
	OutputPerMinute float64
}

var audioRates = map[string]AudioRate{
	"whisper-1":              {InputPerMinute: 0.006},
	"gpt-4o-transcribe":      {InputPerMinute: 0.006},
	"gpt-4o-mini-transcribe": {InputPerMinute: 0.003},
	"gpt-4o-mini-tts":        {OutputPerMinute: 0.015},
	"gpt-4o-realtime":        {InputPerMinute: 0.06, OutputPerMinute: 0.24},
}

// AudioCost is the cost of a metered audio duration.
type AudioCost struct {
	TotalUSD      float64 `json:"totalUSD"`
	RatePerMinute float64 `json:"ratePerMinute"`
	Unknown       bool    `json:"unknown"`
}

// CostForAudioMinutes prices audio by duration. A model with no entry is
// Unknown; a known model missing the requested direction bills at zero.
func CostForAudioMinutes(model string, minutes float64, direction Direction) AudioCost {
	_, rate, ok := resolveAudioRate(model)
	if !ok {
		return AudioCost{Unknown: true}
	}

	perMinute := rate.InputPerMinute
	if direction == DirectionOutput {
		perMinute = rate.OutputPerMinute
	}
	if minutes < 0 {
		minutes = 0
	}

	return AudioCost{
		TotalUSD:      round6(minutes * perMinute),
		RatePerMinute: perMinute,
	}
}

func resolveAudioRate(model string) (string, AudioRate, bool) {
	model = strings.ToLower(strings.TrimSpace(model))
	var (
		bestKey  string
		bestRate AudioRate
		found    bool
	)
	for key, rate := range audioRates {
		if strings.HasPrefix(model, key) && len(key) > len(bestKey) {
			bestKey, bestRate, found = key, rate, true
		}
	}
	return bestKey, bestRate, found
}
