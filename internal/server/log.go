package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/chatlens/chatlens/internal/telemetry/codec"
	"github.com/chatlens/chatlens/internal/telemetry/domain"
	"github.com/gin-gonic/gin"
)

// SubmitLog accepts one telemetry payload and dispatches on its type. The
// response reports whether the remote intake accepted the mirrored copy.
func (s *Server) SubmitLog(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, fmt.Errorf("%w: malformed json", ErrInvalidRequest))
		return
	}

	ctx := c.Request.Context()
	kind := strings.ToLower(codec.ToString(body["type"]))

	var (
		delivered bool
		err       error
	)
	switch kind {
	case "event":
		delivered, err = s.logsvc.LogEvent(ctx, codec.ToString(body["role"]), codec.ToString(body["message"]))
	case "error":
		delivered, err = s.logsvc.LogError(ctx, codec.ToString(body["user"]), codec.ToString(body["message"]))
	case "usage":
		raw, _ := body["usage"].(map[string]any)
		delivered, err = s.logsvc.LogUsage(ctx, codec.DecodeUsage(raw))
	case "metric":
		delivered, err = s.logsvc.LogMetric(ctx, codec.ToString(body["metricType"]), codec.ToFloat64(body["value"]))
	case "lead":
		delivered, err = s.logsvc.LogLead(ctx, decodeLead(body))
	case "conversation":
		data, _ := body["data"].(map[string]any)
		sessionID := strings.TrimSpace(codec.ToString(body["sessionId"]))
		if sessionID == "" {
			AbortWithError(c, fmt.Errorf("%w: sessionId is required", ErrInvalidRequest))
			return
		}
		delivered, err = s.logsvc.LogConversation(ctx, sessionID, data)
	default:
		AbortWithError(c, fmt.Errorf("%w: unknown log type %q", ErrInvalidRequest, kind))
		return
	}

	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}

func decodeLead(body map[string]any) domain.LeadInput {
	lead := domain.LeadInput{
		Name:    codec.ToString(body["name"]),
		Email:   codec.ToString(body["email"]),
		Phone:   codec.ToString(body["phone"]),
		Snippet: codec.ToString(body["snippet"]),
	}
	if rawTags, ok := body["tags"].([]any); ok {
		tags := make([]string, 0, len(rawTags))
		for _, tag := range rawTags {
			if s := codec.ToString(tag); s != "" {
				tags = append(tags, s)
			}
		}
		lead.Tags = tags
	}
	return lead
}
