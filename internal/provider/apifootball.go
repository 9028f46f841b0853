package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/metrics"
	"github.com/yourusername/oddsmesh/internal/models"
	"github.com/yourusername/oddsmesh/internal/pipeline"
	"github.com/yourusername/oddsmesh/internal/store"
)

const apiFootballDefaultBaseURL = "https://v3.football.api-sports.io"

// APIFootballClient implements Adapter for API-Football (api-sports.io).
// The upstream covers football only.
type APIFootballClient struct {
	state
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	timeout    time.Duration
	cache      *feedCache
	normalizer *pipeline.Normalizer
	logger     *logrus.Entry
}

// APIFootballOptions configures an APIFootballClient.
type APIFootballOptions struct {
	ID        string
	Name      string
	Weight    int
	Enabled   bool
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	Staleness time.Duration
	RateLimit float64
}

// NewAPIFootballClient creates a new API-Football adapter.
func NewAPIFootballClient(opts APIFootballOptions, kv store.Store, normalizer *pipeline.Normalizer, logger *logrus.Entry) *APIFootballClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = apiFootballDefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = timeout
	if opts.RateLimit > 0 {
		httpCfg.RateLimit = opts.RateLimit
	}

	return &APIFootballClient{
		state:      newState(opts.ID, opts.Name, opts.Weight, opts.Enabled),
		httpClient: NewRateLimitedHTTPClient(httpCfg, logger),
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		timeout:    timeout,
		cache:      newFeedCache(kv, opts.ID, opts.Staleness, logger),
		normalizer: normalizer,
		logger:     logger,
	}
}

// FetchOdds retrieves today's fixture odds and normalizes them. On upstream
// failure it degrades to the last cached feed, then to an empty feed.
func (c *APIFootballClient) FetchOdds(ctx context.Context) (*models.ProviderFeed, error) {
	if !c.IsEnabled() {
		return models.EmptyFeed(c.id), NewProviderError(c.id, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.fetchOddsPage(ctx)
	if err != nil {
		if cached := c.cache.load(ctx); cached != nil {
			return cached, NewProviderError(c.id, ErrCodeNetworkError, "serving cached feed after fetch failure", err)
		}
		return models.EmptyFeed(c.id), NewProviderError(c.id, ErrCodeNetworkError, "fetch failed with no cached feed", err)
	}

	feed := c.normalizer.NormalizeAPIFootball(c.id, raw)
	c.cache.save(ctx, feed)
	metrics.QuotesCollectedTotal.WithLabelValues(c.id).Add(float64(len(feed.Quotes)))

	return feed, nil
}

// fetchOddsPage fetches the odds listing for today's fixtures.
func (c *APIFootballClient) fetchOddsPage(ctx context.Context) (*pipeline.APIFootballOddsResponse, error) {
	endpoint := fmt.Sprintf("%s/odds?date=%s&timezone=UTC", c.baseURL, time.Now().UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-apisports-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, NewProviderError(c.id, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusTooManyRequests:
		return nil, NewProviderError(c.id, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, NewProviderError(c.id, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload pipeline.APIFootballOddsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewProviderError(c.id, ErrCodeInvalidData, "failed to parse response", err)
	}

	return &payload, nil
}
