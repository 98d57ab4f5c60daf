package pricing

import (
	"math"
	"strings"
)

// imageRates is keyed family → quality → canonical WxH size. Any miss in the
// chain yields a zero unit price with Unknown=true.
var imageRates = map[string]map[string]map[string]float64{
	"gpt-image-1": {
		"low": {
			"1024x1024": 0.011,
			"1024x1536": 0.016,
			"1536x1024": 0.016,
		},
		"medium": {
			"1024x1024": 0.042,
			"1024x1536": 0.063,
			"1536x1024": 0.063,
		},
		"high": {
			"1024x1024": 0.167,
			"1024x1536": 0.25,
			"1536x1024": 0.25,
		},
	},
	"dall-e-3": {
		"standard": {
			"1024x1024": 0.04,
			"1024x1792": 0.08,
			"1792x1024": 0.08,
		},
		"hd": {
			"1024x1024": 0.08,
			"1024x1792": 0.12,
			"1792x1024": 0.12,
		},
	},
	"dall-e-2": {
		"standard": {
			"256x256":   0.016,
			"512x512":   0.018,
			"1024x1024": 0.02,
		},
	},
}

// ImageCost is the cost of an image generation request.
type ImageCost struct {
	TotalUSD     float64 `json:"totalUSD"`
	UnitPriceUSD float64 `json:"unitPriceUSD"`
	Unknown      bool    `json:"unknown"`
}

// CostForImage prices generated images through the three-level lookup
// (normalized family, quality tier, WxH size). Count is floored; zero or
// negative counts cost zero.
func CostForImage(model, size, quality string, count float64) ImageCost {
	family := normalizeImageFamily(model)
	qualities, ok := imageRates[family]
	if !ok {
		return ImageCost{Unknown: true}
	}

	sizes, ok := qualities[normalizeImageQuality(family, quality)]
	if !ok {
		return ImageCost{Unknown: true}
	}

	unit, ok := sizes[strings.ToLower(strings.TrimSpace(size))]
	if !ok {
		return ImageCost{Unknown: true}
	}

	n := math.Floor(count)
	if n < 0 {
		n = 0
	}

	return ImageCost{
		TotalUSD:     round6(n * unit),
		UnitPriceUSD: unit,
	}
}

func normalizeImageFamily(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.Contains(model, "gpt-image"):
		return "gpt-image-1"
	case strings.Contains(model, "dall-e-3"), strings.Contains(model, "dalle-3"):
		return "dall-e-3"
	case strings.Contains(model, "dall-e-2"), strings.Contains(model, "dalle-2"):
		return "dall-e-2"
	default:
		return model
	}
}

func normalizeImageQuality(family, quality string) string {
	quality = strings.ToLower(strings.TrimSpace(quality))
	if quality != "" {
		return quality
	}
	// Each family's default tier when the caller omits quality.
	if family == "gpt-image-1" {
		return "medium"
	}
	return "standard"
}
