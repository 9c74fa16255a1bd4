// Reaction API HTTP client
//
// Env:
//   - REACTION_API_URL: reaction service base URL (e.g. http://localhost:8080)
//   - REACTION_API_TIMEOUT: per-request timeout
//   - REACTION_API_TOKEN: bearer token of the current actor (optional)
//
// Endpoints:
//   - GET  /api/v1/reactions/summary?target_type=&target_id=&breakdown=kind+emoji
//   - GET  /api/v1/reactions/rating?target_type=&target_id=
//   - GET  /api/v1/reactions/mine?target_type=&target_ids=a,b
//   - POST /api/v1/reactions/toggle
//   - POST /api/v1/reactions/rate

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kube-rca/reactions/internal/config"
	"github.com/kube-rca/reactions/internal/model"
)

// StatusError - non-2xx response from the reaction API
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("reaction api returned status: %d", e.Code)
	}
	return fmt.Sprintf("reaction api returned status: %d (%s)", e.Code, e.Message)
}

type ReactionClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewReactionClient(cfg config.ReactionClientConfig) *ReactionClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &ReactionClient{
		baseURL: baseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithToken returns a copy that sends token as the bearer credential.
func (c *ReactionClient) WithToken(token string) *ReactionClient {
	cp := *c
	cp.token = strings.TrimSpace(token)
	return &cp
}

// IsAuthenticated reports whether requests carry an actor credential.
func (c *ReactionClient) IsAuthenticated() bool {
	return c.token != ""
}

func (c *ReactionClient) FetchSummary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, error) {
	q := url.Values{}
	q.Set("target_type", targetType)
	q.Set("target_id", targetID)
	q.Set("breakdown", "kind+emoji")

	var node model.SummaryNode
	if err := c.do(ctx, http.MethodGet, "/api/v1/reactions/summary", q, nil, &node); err != nil {
		return nil, fmt.Errorf("failed to fetch summary: %w", err)
	}
	return &node, nil
}

func (c *ReactionClient) FetchRatingSummary(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, error) {
	q := url.Values{}
	q.Set("target_type", targetType)
	q.Set("target_id", targetID)

	var node model.RatingSummaryNode
	if err := c.do(ctx, http.MethodGet, "/api/v1/reactions/rating", q, nil, &node); err != nil {
		return nil, fmt.Errorf("failed to fetch rating summary: %w", err)
	}
	return &node, nil
}

func (c *ReactionClient) FetchMine(ctx context.Context, targetType string, targetIDs []string) ([]model.ReactionRecord, error) {
	q := url.Values{}
	q.Set("target_type", targetType)
	q.Set("target_ids", strings.Join(targetIDs, ","))

	var records []model.ReactionRecord
	if err := c.do(ctx, http.MethodGet, "/api/v1/reactions/mine", q, nil, &records); err != nil {
		return nil, fmt.Errorf("failed to fetch own reactions: %w", err)
	}
	return records, nil
}

func (c *ReactionClient) Toggle(ctx context.Context, req model.ToggleRequest) error {
	var resp model.MutationResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/reactions/toggle", nil, req, &resp); err != nil {
		return fmt.Errorf("failed to toggle reaction: %w", err)
	}
	return nil
}

func (c *ReactionClient) Rate(ctx context.Context, req model.RateRequest) error {
	var resp model.MutationResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/reactions/rate", nil, req, &resp); err != nil {
		return fmt.Errorf("failed to rate: %w", err)
	}
	return nil
}

func (c *ReactionClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr model.ErrorResponse
		_ = json.Unmarshal(respBody, &apiErr)
		log.Printf("[ReactionClient] %s %s -> %d (request_id=%s)", method, path, resp.StatusCode, requestID)
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
