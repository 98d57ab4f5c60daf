// Package service implements the dual-sink telemetry forwarder.
package service

import (
	"context"
	"strings"

	"github.com/chatlens/chatlens/internal/config"
	obsmetrics "github.com/chatlens/chatlens/internal/observability/metrics"
	"github.com/chatlens/chatlens/internal/pricing"
	"github.com/chatlens/chatlens/internal/telemetry/codec"
	"github.com/chatlens/chatlens/internal/telemetry/domain"
	"github.com/chatlens/chatlens/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type ServiceParam struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Repo    domain.Repository
	Intake  domain.Intake
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	intakeCfg config.IntakeConfig
	log       *zap.Logger
	repo      domain.Repository
	intake    domain.Intake
	metrics   *obsmetrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		intakeCfg: p.Config.Intake,
		log:       p.Log.Named("telemetry.service"),
		repo:      p.Repo,
		intake:    p.Intake,
		metrics:   p.Metrics,
	}
}

// forward runs the write-mode state machine for one payload. The local sink
// runs when the mode writes locally, or as a fallback in admin mode after the
// remote post failed. Local failures are logged and absorbed; the only error
// surfaced to callers is a missing tenant.
func (s *Service) forward(ctx context.Context, kind string, body map[string]any, local func(ctx context.Context, tenantID string) error) (bool, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok || tenantID == "" {
		return false, domain.ErrMissingTenant
	}

	delivered := false
	if s.intakeCfg.Mode.WritesRemote() {
		delivered = s.intake.Send(ctx, tenantID, body)
		s.metrics.RecordForward(ctx, kind, delivered)
	}

	writeLocal := s.intakeCfg.Mode.WritesLocal()
	if s.intakeCfg.Mode == config.WriteModeAdmin && s.intakeCfg.FallbackLocal && !delivered {
		writeLocal = true
	}
	if writeLocal {
		if err := local(ctx, tenantID); err != nil {
			s.log.Error("local sink write failed",
				zap.String("kind", kind),
				zap.String("tenant_id", tenantID),
				zap.Error(err),
			)
		} else {
			s.metrics.RecordLocalWrite(ctx, kind)
		}
	}

	return delivered, nil
}

func (s *Service) LogEvent(ctx context.Context, role, message string) (bool, error) {
	return s.forward(ctx, "event", codec.EventBody(role, message), func(ctx context.Context, tenantID string) error {
		kind := strings.TrimSpace(role)
		if kind == "" {
			kind = "info"
		}
		return s.repo.CreateEvent(ctx, &domain.Event{
			TenantID: tenantID,
			Kind:     kind,
			Content:  message,
		})
	})
}

func (s *Service) LogError(ctx context.Context, user, message string) (bool, error) {
	return s.forward(ctx, "error", codec.ErrorBody(user, message), func(ctx context.Context, tenantID string) error {
		return s.repo.CreateEvent(ctx, &domain.Event{
			TenantID: tenantID,
			Kind:     "error:" + user,
			Content:  message,
		})
	})
}

func (s *Service) LogUsage(ctx context.Context, usage domain.Usage) (bool, error) {
	usage.Model = strings.ToLower(strings.TrimSpace(usage.Model))
	cost := s.resolveCost(&usage)

	return s.forward(ctx, "usage", codec.UsageBody(usage, cost), func(ctx context.Context, tenantID string) error {
		return s.repo.CreateUsage(ctx, &domain.UsageRecord{
			TenantID:         tenantID,
			Model:            usage.Model,
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			CachedTokens:     usage.CachedTokens,
			CostUSD:          cost,
			Breakdown:        datatypes.JSONMap(usage.Breakdown),
		})
	})
}

// resolveCost trusts a caller-supplied cost and otherwise prices the call
// from the token counts, filling the breakdown when none was given.
func (s *Service) resolveCost(usage *domain.Usage) float64 {
	if usage.CostUSD != nil {
		return *usage.CostUSD
	}

	computed := pricing.CostForText(usage.Model,
		int(usage.PromptTokens),
		int(usage.CompletionTokens),
		int(usage.CachedTokens),
	)
	if computed.Unknown {
		s.log.Warn("no price for model; recording zero cost", zap.String("model", usage.Model))
		return 0
	}
	if usage.Breakdown == nil {
		usage.Breakdown = map[string]any{
			"promptUSD":     computed.PromptUSD,
			"cachedUSD":     computed.CachedUSD,
			"completionUSD": computed.CompletionUSD,
			"totalUSD":      computed.TotalUSD,
		}
	}
	return computed.TotalUSD
}

func (s *Service) LogMetric(ctx context.Context, metricType string, value float64) (bool, error) {
	return s.forward(ctx, "metric", codec.MetricBody(metricType, value), func(ctx context.Context, tenantID string) error {
		name := strings.TrimSpace(metricType)
		if name == "" {
			name = "custom"
		}
		return s.repo.CreateMetric(ctx, &domain.Metric{
			TenantID: tenantID,
			Name:     name,
			Value:    value,
		})
	})
}

func (s *Service) LogLead(ctx context.Context, lead domain.LeadInput) (bool, error) {
	return s.forward(ctx, "lead", codec.LeadBody(lead), func(ctx context.Context, tenantID string) error {
		tags, err := codec.EncodeTags(lead.Tags)
		if err != nil {
			return err
		}
		return s.repo.CreateLead(ctx, &domain.Lead{
			TenantID: tenantID,
			Name:     lead.Name,
			Email:    lead.Email,
			Phone:    lead.Phone,
			Snippet:  lead.Snippet,
			Tags:     tags,
		})
	})
}

func (s *Service) LogConversation(ctx context.Context, sessionID string, data map[string]any) (bool, error) {
	return s.forward(ctx, "conversation", codec.ConversationBody(sessionID, data), func(ctx context.Context, tenantID string) error {
		convo, err := s.repo.UpsertConversation(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}

		if userText := codec.UserText(data); userText != "" {
			if err := s.repo.CreateMessage(ctx, &domain.Message{
				ConversationID: convo.ID,
				Role:           "user",
				Content:        userText,
			}); err != nil {
				return err
			}
		}
		if reply := codec.ReplyText(data); reply != "" {
			if err := s.repo.CreateMessage(ctx, &domain.Message{
				ConversationID: convo.ID,
				Role:           "assistant",
				Content:        reply,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) LogLatency(ctx context.Context, ms float64) (bool, error) {
	return s.LogMetric(ctx, "latency", ms)
}

func (s *Service) LogSuccess(ctx context.Context) (bool, error) {
	return s.LogMetric(ctx, "success", 1)
}
