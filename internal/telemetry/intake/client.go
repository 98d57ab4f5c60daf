// Package intake is the HTTP client for the remote admin collector.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/chatlens/chatlens/internal/config"
	"go.uber.org/zap"
)

// Outcome classifies one delivery attempt.
type Outcome string

const (
	// OutcomeSuccess means the collector answered 2xx.
	OutcomeSuccess Outcome = "success"
	// OutcomeRetriable means no HTTP response arrived (timeout or transport
	// failure). Exactly one retry is spent on these.
	OutcomeRetriable Outcome = "retriable"
	// OutcomeTerminal means the collector answered with a non-2xx status.
	// A response in hand settles the question; retrying will not change it.
	OutcomeTerminal Outcome = "terminal"
)

const logPath = "/api/portal/log"

// Client posts wire bodies to the collector's log endpoint.
type Client struct {
	baseURL     string
	customerKey string
	httpClient  *http.Client
	log         *zap.Logger

	warnNoKey sync.Once
}

// NewClient builds a collector client from the intake config.
func NewClient(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL:     cfg.Intake.URL,
		customerKey: cfg.Intake.CustomerKey,
		httpClient:  &http.Client{Timeout: cfg.Intake.Timeout},
		log:         log.Named("intake"),
	}
}

// Send delivers one body for a tenant, retrying once when no response came
// back. It reports acceptance and never returns an error; delivery failures
// are logged and absorbed.
func (c *Client) Send(ctx context.Context, tenantID string, body map[string]any) bool {
	payload, err := json.Marshal(body)
	if err != nil {
		c.log.Warn("intake body not serializable", zap.Error(err))
		return false
	}

	if c.customerKey == "" {
		c.warnNoKey.Do(func() {
			c.log.Warn("customer key not set; collector may reject with 401")
		})
	}

	outcome, status, err := c.post(ctx, tenantID, payload)
	if outcome == OutcomeRetriable {
		outcome, status, err = c.post(ctx, tenantID, payload)
		if outcome != OutcomeSuccess {
			c.log.Warn("intake delivery failed after retry",
				zap.String("tenant_id", tenantID),
				zap.Int("status", status),
				zap.Error(err),
			)
			return false
		}
		return true
	}

	if outcome != OutcomeSuccess {
		c.log.Warn("intake delivery failed",
			zap.String("tenant_id", tenantID),
			zap.Int("status", status),
			zap.Error(err),
		)
		return false
	}
	return true
}

// post runs one attempt and classifies it. The status is zero when no
// response arrived.
func (c *Client) post(ctx context.Context, tenantID string, payload []byte) (Outcome, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+logPath, bytes.NewReader(payload))
	if err != nil {
		return OutcomeTerminal, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant", tenantID)
	if c.customerKey != "" {
		req.Header.Set("X-Customer-Key", c.customerKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return OutcomeRetriable, 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return OutcomeSuccess, resp.StatusCode, nil
	}
	return OutcomeTerminal, resp.StatusCode, fmt.Errorf("collector returned %s", resp.Status)
}

// Timeout exposes the effective per-attempt deadline.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}
