package domain

import (
	"context"
	"errors"

	"github.com/chatlens/chatlens/pkg/db/pagination"
)

// ErrMissingTenant is returned when a log operation runs without a tenant in
// context. It is the only error the forwarder surfaces to callers; sink
// failures are logged and absorbed.
var ErrMissingTenant = errors.New("missing_tenant")

// Usage is the canonical shape of one metered model call after alias
// coalescing. A nil CostUSD tells the forwarder to compute cost from the
// pricing tables.
type Usage struct {
	Model            string         `json:"model"`
	PromptTokens     int64          `json:"prompt_tokens"`
	CompletionTokens int64          `json:"completion_tokens"`
	CachedTokens     int64          `json:"cached_tokens"`
	CostUSD          *float64       `json:"costUSD,omitempty"`
	Breakdown        map[string]any `json:"breakdown,omitempty"`
}

// LeadInput carries a captured contact toward both sinks.
type LeadInput struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Snippet string   `json:"snippet"`
	Tags    []string `json:"tags"`
}

// Service forwards telemetry to the remote intake and/or the local store
// depending on the configured write mode. The boolean result reports whether
// the remote intake accepted the payload; it stays false in modes that skip
// the remote sink.
type Service interface {
	LogEvent(ctx context.Context, role, message string) (bool, error)
	LogError(ctx context.Context, user, message string) (bool, error)
	LogUsage(ctx context.Context, usage Usage) (bool, error)
	LogMetric(ctx context.Context, metricType string, value float64) (bool, error)
	LogLead(ctx context.Context, lead LeadInput) (bool, error)
	LogConversation(ctx context.Context, sessionID string, data map[string]any) (bool, error)
	LogLatency(ctx context.Context, ms float64) (bool, error)
	LogSuccess(ctx context.Context) (bool, error)
}

// Intake posts one wire body to the remote collector on behalf of a tenant
// and reports whether it was accepted.
type Intake interface {
	Send(ctx context.Context, tenantID string, body map[string]any) bool
}

type ListUsageRequest struct {
	TenantID  string `json:"tenant_id"`
	Model     string `json:"model"`
	PageToken string `json:"page_token"`
	PageSize  int32  `json:"page_size"`
}

type ListUsageResponse struct {
	pagination.PageInfo
	UsageRecords []UsageRecord `json:"usage_records"`
}

type ListLeadsRequest struct {
	TenantID  string `json:"tenant_id"`
	PageToken string `json:"page_token"`
	PageSize  int32  `json:"page_size"`
}

type ListLeadsResponse struct {
	pagination.PageInfo
	Leads []Lead `json:"leads"`
}

type ListMessagesRequest struct {
	TenantID  string `json:"tenant_id"`
	SessionID string `json:"session_id"`
	PageToken string `json:"page_token"`
	PageSize  int32  `json:"page_size"`
}

type ListMessagesResponse struct {
	pagination.PageInfo
	Messages []Message `json:"messages"`
}

// Repository is the local sink plus the read side the portal queries.
type Repository interface {
	CreateEvent(ctx context.Context, event *Event) error
	CreateUsage(ctx context.Context, record *UsageRecord) error
	CreateMetric(ctx context.Context, metric *Metric) error
	CreateLead(ctx context.Context, lead *Lead) error
	UpsertConversation(ctx context.Context, tenantID, sessionID string) (*Conversation, error)
	CreateMessage(ctx context.Context, message *Message) error
	ListUsage(ctx context.Context, req ListUsageRequest) (ListUsageResponse, error)
	ListLeads(ctx context.Context, req ListLeadsRequest) (ListLeadsResponse, error)
	ListMessages(ctx context.Context, req ListMessagesRequest) (ListMessagesResponse, error)
}
