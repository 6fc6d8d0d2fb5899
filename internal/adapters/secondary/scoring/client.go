package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

type scoringClient struct {
	client *http.Client
}

// NewScoringClient creates a client for deployed model endpoints
func NewScoringClient(timeout time.Duration) output.ScoringClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &scoringClient{client: &http.Client{Timeout: timeout}}
}

type scoreRequest struct {
	Data []map[string]any `json:"data"`
}

type scoreResponse struct {
	Result []any `json:"result"`
}

// Score posts {"data": records} and returns the predictions. Entry scripts
// return json.dumps({"result": [...]}), so the body is usually a JSON
// string wrapping the object; a bare object is accepted too.
func (c *scoringClient) Score(ctx context.Context, uri, key string, records []map[string]any) ([]any, error) {
	body, err := json.Marshal(scoreRequest{Data: records})
	if err != nil {
		return nil, fmt.Errorf("marshal scoring request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create scoring request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	log.WithFields(log.Fields{
		"uri":     uri,
		"records": len(records),
	}).Debug("posting scoring request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrScoringFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read scoring response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrScoringFailed, resp.StatusCode, truncate(data, 512))
	}

	return decodePredictions(data)
}

func decodePredictions(data []byte) ([]any, error) {
	payload := bytes.TrimSpace(data)

	var inner string
	if err := json.Unmarshal(payload, &inner); err == nil {
		payload = []byte(inner)
	}

	var out scoreResponse
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrScoringFailed, err)
	}
	if msg, ok := fields["error"]; ok {
		return nil, fmt.Errorf("%w: endpoint error: %s", domain.ErrScoringFailed, string(msg))
	}
	raw, ok := fields["result"]
	if !ok {
		return nil, fmt.Errorf("%w: response has no result", domain.ErrScoringFailed)
	}
	if err := json.Unmarshal(raw, &out.Result); err != nil {
		return nil, fmt.Errorf("%w: result is not a list: %v", domain.ErrScoringFailed, err)
	}
	return out.Result, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
