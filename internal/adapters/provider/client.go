package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/selivandex/news-relay/internal/adapters/config"
	"github.com/selivandex/news-relay/pkg/logger"
	"github.com/selivandex/news-relay/pkg/models"
)

// Client fetches latest headlines from the upstream news provider
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates new provider client
func NewClient(cfg *config.NewsAPIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
	}
}

// cursor is the provider's pagination token. The provider sends numbers,
// strings or null depending on the endpoint, so any scalar is accepted and
// carried as-is.
type cursor string

func (c *cursor) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = cursor(s)
		return nil
	}
	*c = cursor(data)
	return nil
}

// latestResponse is the provider wire shape for /latest
type latestResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Results      []models.Article `json:"results"`
	NextPage     cursor           `json:"nextPage"`
}

// FetchLatest queries the provider with the given payload. Transport
// failures, timeouts and non-2xx statuses are all returned as errors; the
// relay treats any of them as a provider failure.
func (c *Client) FetchLatest(ctx context.Context, payload models.QueryPayload) (*models.Response, error) {
	query, err := BuildQuery(c.apiKey, payload)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/latest?%s", c.baseURL, query)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var result latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	logger.Debug("fetched latest news",
		zap.Int("count", len(result.Results)),
		zap.String("next_page", string(result.NextPage)),
		zap.Duration("latency", time.Since(start)),
	)

	return &models.Response{
		Status:   result.Status,
		Results:  result.Results,
		NextPage: string(result.NextPage),
	}, nil
}
