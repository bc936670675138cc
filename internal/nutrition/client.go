package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/NutriVision/NV-Backend/internal/provider"
	"golang.org/x/time/rate"
)

// Client wraps the nutrition lookup API (CalorieNinjas wire format: free-text
// query, X-Api-Key header).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a nutrition API client. Returns nil if the key is not set
// (graceful degradation: search endpoints answer 501).
func NewClient(baseURL, apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		// The free tier throttles hard; stay politely under it.
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Search looks up nutrition facts for a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]Item, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := fmt.Sprintf("%s/v1/nutrition?query=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	provider.LogRequest("nutrition", http.MethodGet, u, nil)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nutrition request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nutrition API returned status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	provider.LogResponse("nutrition", resp.StatusCode, time.Since(start), len(apiResp.Items))
	return apiResp.Items, nil
}
