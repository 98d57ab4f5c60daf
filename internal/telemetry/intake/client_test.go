package intake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chatlens/chatlens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	cfg := config.Config{Intake: config.IntakeConfig{
		URL:         url,
		CustomerKey: "secret",
		Timeout:     timeout,
	}}
	return NewClient(cfg, zap.NewNop())
}

func TestSend_Success(t *testing.T) {
	var gotTenant, gotKey, gotContentType atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/portal/log", r.URL.Path)
		gotTenant.Store(r.Header.Get("X-Tenant"))
		gotKey.Store(r.Header.Get("X-Customer-Key"))
		gotContentType.Store(r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "event", body["type"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)
	delivered := client.Send(context.Background(), "acme", map[string]any{"type": "event"})

	assert.True(t, delivered)
	assert.Equal(t, "acme", gotTenant.Load())
	assert.Equal(t, "secret", gotKey.Load())
	assert.Equal(t, "application/json", gotContentType.Load())
}

func TestSend_TerminalStatusDoesNotRetry(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)
	delivered := client.Send(context.Background(), "acme", map[string]any{"type": "event"})

	assert.False(t, delivered)
	assert.Equal(t, int32(1), attempts.Load(), "any HTTP response settles the attempt")
}

func TestSend_TimeoutRetriesExactlyOnce(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 50*time.Millisecond)
	delivered := client.Send(context.Background(), "acme", map[string]any{"type": "event"})

	assert.False(t, delivered)
	assert.Equal(t, int32(2), attempts.Load(), "one retry, no more")
}

func TestSend_RetrySucceeds(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			time.Sleep(200 * time.Millisecond)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 50*time.Millisecond)
	delivered := client.Send(context.Background(), "acme", map[string]any{"type": "event"})

	assert.True(t, delivered)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestSend_ConnectionRefusedIsRetriable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := newTestClient(t, url, time.Second)
	delivered := client.Send(context.Background(), "acme", map[string]any{"type": "event"})

	assert.False(t, delivered)
}

func TestSend_OmitsCustomerKeyHeaderWhenUnset(t *testing.T) {
	var hadKey atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Header["X-Customer-Key"]
		hadKey.Store(ok)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Config{Intake: config.IntakeConfig{URL: srv.URL, Timeout: time.Second}}
	client := NewClient(cfg, zap.NewNop())

	assert.True(t, client.Send(context.Background(), "acme", map[string]any{"type": "event"}))
	assert.False(t, hadKey.Load())
}
