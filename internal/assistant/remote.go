package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/garnizeh/hikelog/internal/config"
)

// RemoteClient talks to the chat backend and adds retries, timeout, and a
// circuit breaker so a flapping backend does not hang the UI.
type RemoteClient struct {
	cfg    config.AssistantConfig
	client *http.Client
	logger *slog.Logger

	// simple circuit breaker state
	failures  int32
	openUntil int64 // unix nano
	closed    int32 // atomic flag for Close()
}

var _ Client = (*RemoteClient)(nil)

func NewRemoteClient(cfg config.AssistantConfig, httpClient *http.Client, logger *slog.Logger) *RemoteClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteClient{cfg: cfg, client: httpClient, logger: logger}
}

type askRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error,omitempty"`
}

func (c *RemoteClient) Ask(ctx context.Context, userID int64, question string) (string, error) {
	if c.isCircuitOpen() {
		return "", ErrCircuitOpen
	}

	body, err := json.Marshal(askRequest{Question: question, UserID: strconv.FormatInt(userID, 10)})
	if err != nil {
		return "", fmt.Errorf("marshal ask request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		answer, err := c.ask(ctx, body)
		if err == nil {
			atomic.StoreInt32(&c.failures, 0)
			return answer, nil
		}

		lastErr = err
		c.recordFailure()
		if c.isCircuitOpen() {
			return "", ErrCircuitOpen
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.cfg.Backoff * time.Duration(attempt+1)):
		}
	}

	return "", fmt.Errorf("ask failed after retries: %w", lastErr)
}

func (c *RemoteClient) ask(ctx context.Context, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/ask", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ask endpoint returned status %d", resp.StatusCode)
	}

	var out askResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("assistant error: %s", out.Error)
	}

	return out.Answer, nil
}

func (c *RemoteClient) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.failures) < int32(c.cfg.CircuitFailureThreshold) {
		return false
	}

	if time.Now().UnixNano() < atomic.LoadInt64(&c.openUntil) {
		return true
	}

	// attempt half-open: reset failures and allow a request
	atomic.StoreInt32(&c.failures, 0)
	return false
}

func (c *RemoteClient) recordFailure() {
	v := atomic.AddInt32(&c.failures, 1)
	if v >= int32(c.cfg.CircuitFailureThreshold) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.cfg.CircuitReset).UnixNano())
	}
}

// Close releases pooled connections. Idempotent.
func (c *RemoteClient) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil {
		c.client.CloseIdleConnections()
	}
	return nil
}
