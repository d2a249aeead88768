package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"caseguard-backend/internal/attachment"
)

// CounterClient asks the counter service how many items a case already holds.
type CounterClient struct {
	BaseURL string
	Client  *http.Client
}

type countRequest struct {
	CaseID string `json:"caseId"`
	Kind   string `json:"kind"`
}

type countResponse struct {
	Count int `json:"count"`
}

type countErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c CounterClient) CountOfItemsOfKind(ctx context.Context, caseID string, kind attachment.Kind) (int, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return 0, errors.New("counter url not configured")
	}
	client := c.Client
	if client == nil {
		client = defaultHTTPClient(5 * time.Second)
	}
	payload, err := json.Marshal(countRequest{CaseID: caseID, Kind: string(kind)})
	if err != nil {
		return 0, fmt.Errorf("encode count request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/count", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return 0, countFailure(resp)
	}
	var body countResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return body.Count, nil
}

// countFailure prefers the service's error message and falls back to the
// HTTP status when the body is not the service's JSON.
func countFailure(resp *http.Response) error {
	var body countErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil || body.Message == "" {
		return fmt.Errorf("count failed: %s", resp.Status)
	}
	return fmt.Errorf("count failed: %s", body.Message)
}

func defaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
