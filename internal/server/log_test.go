package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chatlens/chatlens/internal/config"
	"github.com/chatlens/chatlens/internal/telemetry/domain"
	"github.com/chatlens/chatlens/pkg/tenantctx"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serviceMock struct {
	mock.Mock
}

func (m *serviceMock) LogEvent(ctx context.Context, role, message string) (bool, error) {
	args := m.Called(ctx, role, message)
	return args.Bool(0), args.Error(1)
}

func (m *serviceMock) LogError(ctx context.Context, user, message string) (bool, error) {
	args := m.Called(ctx, user, message)
	return args.Bool(0), args.Error(1)
}

func (m *serviceMock) LogUsage(ctx context.Context, usage domain.Usage) (bool, error) {
	args := m.Called(ctx, usage)
	return args.Bool(0), args.Error(1)
}

func (m *serviceMock) LogMetric(ctx context.Context, metricType string, value float64) (bool, error) {
	args := m.Called(ctx, metricType, value)
	return args.Bool(0), args.Error(1)
}

func (m *serviceMock) LogLead(ctx context.Context, lead domain.LeadInput) (bool, error) {
	args := m.Called(ctx, lead)
	return args.Bool(0), args.Error(1)
}

func (m *serviceMock) LogConversation(ctx context.Context, sessionID string, data map[string]any) (bool, error) {
	args := m.Called(ctx, sessionID, data)
	return args.Bool(0), args.Error(1)
}

func (m *serviceMock) LogLatency(ctx context.Context, ms float64) (bool, error) {
	args := m.Called(ctx, ms)
	return args.Bool(0), args.Error(1)
}

func (m *serviceMock) LogSuccess(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type repoStub struct {
	domain.Repository
}

func newTestServer(t *testing.T, svc domain.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:    engine,
		Cfg:    config.Config{DefaultTenant: "default"},
		Logsvc: svc,
		Repo:   repoStub{},
	})
	return engine
}

func postLog(t *testing.T, engine *gin.Engine, tenant string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/log", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if tenant != "" {
		req.Header.Set("X-Tenant", tenant)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSubmitLog_DispatchesEvent(t *testing.T) {
	svc := &serviceMock{}
	svc.On("LogEvent", mock.MatchedBy(func(ctx context.Context) bool {
		tenantID, _ := tenantctx.TenantID(ctx)
		return tenantID == "acme"
	}), "info", "bot started").Return(true, nil)

	rec := postLog(t, newTestServer(t, svc), "acme", map[string]any{
		"type":    "event",
		"role":    "info",
		"message": "bot started",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"delivered": true}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestSubmitLog_UsageAliases(t *testing.T) {
	svc := &serviceMock{}
	svc.On("LogUsage", mock.Anything, mock.MatchedBy(func(u domain.Usage) bool {
		return u.Model == "gpt-4o-mini" && u.PromptTokens == 1000 && u.CompletionTokens == 500
	})).Return(true, nil)

	rec := postLog(t, newTestServer(t, svc), "acme", map[string]any{
		"type": "usage",
		"usage": map[string]any{
			"model":             "GPT-4o-mini",
			"promptTokens":      1000,
			"completion_tokens": 500,
		},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestSubmitLog_UnknownTypeRejected(t *testing.T) {
	rec := postLog(t, newTestServer(t, &serviceMock{}), "acme", map[string]any{
		"type": "telepathy",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitLog_ConversationRequiresSession(t *testing.T) {
	rec := postLog(t, newTestServer(t, &serviceMock{}), "acme", map[string]any{
		"type": "conversation",
		"data": map[string]any{"message": "hi"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitLog_DefaultTenantWhenUnset(t *testing.T) {
	svc := &serviceMock{}
	svc.On("LogMetric", mock.MatchedBy(func(ctx context.Context) bool {
		tenantID, _ := tenantctx.TenantID(ctx)
		return tenantID == "default"
	}), "latency", 42.0).Return(false, nil)

	rec := postLog(t, newTestServer(t, svc), "", map[string]any{
		"type":       "metric",
		"metricType": "latency",
		"value":      42,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"delivered": false}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestSubmitLog_TenantSlugSanitized(t *testing.T) {
	svc := &serviceMock{}
	svc.On("LogEvent", mock.MatchedBy(func(ctx context.Context) bool {
		tenantID, _ := tenantctx.TenantID(ctx)
		return tenantID == "acme01"
	}), "info", "x").Return(true, nil)

	rec := postLog(t, newTestServer(t, svc), "Acme!@# 01", map[string]any{
		"type":    "event",
		"role":    "info",
		"message": "x",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestSubmitLog_LeadTags(t *testing.T) {
	svc := &serviceMock{}
	svc.On("LogLead", mock.Anything, domain.LeadInput{
		Name:  "Jane Doe",
		Email: "jane@x.com",
		Phone: "555-1234",
		Tags:  []string{"budget"},
	}).Return(false, nil)

	rec := postLog(t, newTestServer(t, svc), "acme", map[string]any{
		"type":  "lead",
		"name":  "Jane Doe",
		"email": "jane@x.com",
		"phone": "555-1234",
		"tags":  []string{"budget"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
