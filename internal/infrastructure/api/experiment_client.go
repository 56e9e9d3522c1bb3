// Package api talks to the experiment record API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"throttlelab/internal/core/domain"
	"throttlelab/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// ExperimentClient creates experiment records over HTTP.
type ExperimentClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewExperimentClient creates a client rooted at baseURL, e.g.
// "http://localhost:3000/api".
func NewExperimentClient(baseURL string, timeout time.Duration) *ExperimentClient {
	return &ExperimentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createResponse struct {
	ID *domain.ExperimentID `json:"id"`
}

// CreateExperiment posts a new record and returns its id. Any non-2xx status
// is an error.
func (c *ExperimentClient) CreateExperiment(ctx context.Context, exp domain.NewExperiment) (*domain.ExperimentRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "api.CreateExperiment")
	defer span.End()

	jsonData, err := json.Marshal(exp)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/experiments", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("post experiment: %w", err)
	}
	defer resp.Body.Close()

	tracing.AddSpanAttributes(ctx, attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("experiment API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		tracing.RecordError(ctx, err)
		return nil, err
	}

	var out createResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.ID == nil {
		return nil, domain.ErrMissingExperimentID
	}

	tracing.AddSpanAttributes(ctx, tracing.ExperimentIDKey.Int64(int64(*out.ID)))
	return &domain.ExperimentRecord{ID: *out.ID}, nil
}
