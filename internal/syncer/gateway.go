package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Gateway is the network boundary to the remote vector store.
type Gateway interface {
	SyncHike(ctx context.Context, token string, req *SyncRequest) (*SyncResponse, error)
}

// HTTPGateway posts sync bundles to {base}/sync/hike. Every failure mode is a
// RemoteError; there are no retries here, the caller owns that decision.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ Gateway = (*HTTPGateway)(nil)

func NewHTTPGateway(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPGateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (g *HTTPGateway) SyncHike(ctx context.Context, token string, req *SyncRequest) (*SyncResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal sync request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/sync/hike", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sync request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, &RemoteError{Message: "network error", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// best effort: include a slice of the body in the message
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &RemoteError{Message: fmt.Sprintf("server error: %d %s", resp.StatusCode, strings.TrimSpace(string(b)))}
	}

	var out SyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &RemoteError{Message: "malformed response body", Err: err}
	}

	g.logger.Debug("sync response",
		slog.Bool("success", out.Success),
		slog.String("hike_id", out.HikeID),
		slog.Int("documents_updated", out.DocumentsUpdated),
	)

	return &out, nil
}

// CloseIdleConnections releases pooled connections; useful on teardown.
func (g *HTTPGateway) CloseIdleConnections() {
	g.client.CloseIdleConnections()
}
