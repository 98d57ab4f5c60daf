// Package codec normalizes loosely shaped telemetry payloads into canonical
// domain values and builds the wire bodies posted to the remote intake.
//
// Decoding is total: unexpected types coerce to zero values, never errors. A
// malformed field can cost us one datum but must not fail the request that
// carried it.
package codec

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/chatlens/chatlens/internal/telemetry/domain"
	"gorm.io/datatypes"
)

// DecodeUsage coalesces the snake_case and camelCase aliases a usage payload
// may carry. costUSD wins over cost when both are present; a missing cost
// leaves CostUSD nil so the forwarder computes one.
func DecodeUsage(raw map[string]any) domain.Usage {
	usage := domain.Usage{
		Model:            strings.ToLower(ToString(raw["model"])),
		PromptTokens:     firstInt64(raw, "prompt_tokens", "promptTokens"),
		CompletionTokens: firstInt64(raw, "completion_tokens", "completionTokens"),
		CachedTokens:     firstInt64(raw, "cached_tokens", "cachedTokens"),
	}

	if v, ok := lookupFloat(raw, "costUSD"); ok {
		usage.CostUSD = &v
	} else if v, ok := lookupFloat(raw, "cost"); ok {
		usage.CostUSD = &v
	}

	if breakdown, ok := raw["breakdown"].(map[string]any); ok {
		usage.Breakdown = breakdown
	}

	return usage
}

// UserText pulls the user's turn out of a conversation payload, checking the
// same field names the chat widget uses.
func UserText(data map[string]any) string {
	for _, key := range []string{"message", "content", "text", "prompt"} {
		if s := strings.TrimSpace(ToString(data[key])); s != "" {
			return s
		}
	}
	return ""
}

// ReplyText pulls the assistant's turn out of a conversation payload.
func ReplyText(data map[string]any) string {
	return strings.TrimSpace(ToString(data["reply"]))
}

// EventBody builds the wire body for an operational event.
func EventBody(role, message string) map[string]any {
	return map[string]any{"type": "event", "role": role, "message": message}
}

// ErrorBody builds the wire body for an error report.
func ErrorBody(user, message string) map[string]any {
	return map[string]any{"type": "error", "user": user, "message": message}
}

// UsageBody builds the wire body for a metered model call. The nested usage
// object always carries snake_case token fields and costUSD, whatever aliases
// the caller supplied.
func UsageBody(usage domain.Usage, costUSD float64) map[string]any {
	var breakdown any
	if usage.Breakdown != nil {
		breakdown = usage.Breakdown
	}
	return map[string]any{
		"type": "usage",
		"usage": map[string]any{
			"model":             usage.Model,
			"prompt_tokens":     usage.PromptTokens,
			"completion_tokens": usage.CompletionTokens,
			"cached_tokens":     usage.CachedTokens,
			"costUSD":           costUSD,
			"breakdown":         breakdown,
		},
	}
}

// MetricBody builds the wire body for a gauge sample.
func MetricBody(metricType string, value float64) map[string]any {
	return map[string]any{"type": "metric", "metricType": metricType, "value": value}
}

// LeadBody builds the wire body for a captured contact.
func LeadBody(lead domain.LeadInput) map[string]any {
	tags := lead.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"type":    "lead",
		"name":    lead.Name,
		"email":   lead.Email,
		"phone":   lead.Phone,
		"snippet": lead.Snippet,
		"tags":    tags,
	}
}

// ConversationBody builds the wire body for a conversation turn.
func ConversationBody(sessionID string, data map[string]any) map[string]any {
	return map[string]any{"type": "conversation", "sessionId": sessionID, "data": data}
}

// EncodeTags marshals a tag list for jsonb storage. Nil becomes an empty list.
func EncodeTags(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// ToString renders any scalar as a string; nil and composites become "".
func ToString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

// ToFloat64 coerces JSON scalars to float64; anything else becomes zero.
func ToFloat64(v any) float64 {
	f, _ := asFloat(v)
	return f
}

// ToInt64 coerces JSON scalars to int64, truncating fractions.
func ToInt64(v any) int64 {
	return int64(ToFloat64(v))
}

func firstInt64(raw map[string]any, keys ...string) int64 {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return ToInt64(v)
		}
	}
	return 0
}

func lookupFloat(raw map[string]any, key string) (float64, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, false
	}
	return asFloat(v)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
