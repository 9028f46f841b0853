package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/metrics"
	"github.com/yourusername/oddsmesh/internal/models"
	"github.com/yourusername/oddsmesh/internal/pipeline"
	"github.com/yourusername/oddsmesh/internal/store"
)

const theOddsAPIDefaultBaseURL = "https://api.the-odds-api.com/v4"

// defaultTheOddsAPISports are the sport keys polled each pass.
var defaultTheOddsAPISports = []string{
	"soccer_epl",
	"soccer_spain_la_liga",
	"basketball_nba",
	"icehockey_nhl",
	"mma_mixed_martial_arts",
}

// TheOddsAPIClient implements Adapter for The Odds API (the-odds-api.com).
type TheOddsAPIClient struct {
	state
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	sportKeys  []string
	timeout    time.Duration
	cache      *feedCache
	normalizer *pipeline.Normalizer
	logger     *logrus.Entry
}

// TheOddsAPIOptions configures a TheOddsAPIClient.
type TheOddsAPIOptions struct {
	ID        string
	Name      string
	Weight    int
	Enabled   bool
	APIKey    string
	BaseURL   string
	SportKeys []string
	Timeout   time.Duration
	Staleness time.Duration
	RateLimit float64
}

// NewTheOddsAPIClient creates a new The Odds API adapter.
func NewTheOddsAPIClient(opts TheOddsAPIOptions, kv store.Store, normalizer *pipeline.Normalizer, logger *logrus.Entry) *TheOddsAPIClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = theOddsAPIDefaultBaseURL
	}
	sportKeys := opts.SportKeys
	if len(sportKeys) == 0 {
		sportKeys = defaultTheOddsAPISports
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

	return &TheOddsAPIClient{
		state:      newState(opts.ID, opts.Name, opts.Weight, opts.Enabled),
		httpClient: NewRateLimitedHTTPClient(httpCfg, logger),
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		sportKeys:  sportKeys,
		timeout:    timeout,
		cache:      newFeedCache(kv, opts.ID, opts.Staleness, logger),
		normalizer: normalizer,
		logger:     logger,
	}
}

// FetchOdds retrieves and normalizes current odds across the configured
// sport keys. On upstream failure it degrades to the last cached feed, then
// to an empty feed; the returned feed is always usable and the error only
// reports that the live fetch failed.
func (c *TheOddsAPIClient) FetchOdds(ctx context.Context) (*models.ProviderFeed, error) {
	if !c.IsEnabled() {
		return models.EmptyFeed(c.id), NewProviderError(c.id, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var raw []pipeline.TheOddsAPIEvent
	var failed int
	var lastErr error

	for _, sportKey := range c.sportKeys {
		events, err := c.fetchSport(ctx, sportKey)
		if err != nil {
			failed++
			lastErr = err
			if c.logger != nil {
				c.logger.WithError(err).WithField("sport_key", sportKey).Warn("Sport fetch failed")
			}
			continue
		}
		raw = append(raw, events...)
	}

	// Every sport fetch failed: serve the cached feed within its staleness
	// ceiling, else an empty feed.
	if failed == len(c.sportKeys) {
		if cached := c.cache.load(ctx); cached != nil {
			return cached, NewProviderError(c.id, ErrCodeNetworkError, "serving cached feed after fetch failure", lastErr)
		}
		return models.EmptyFeed(c.id), NewProviderError(c.id, ErrCodeNetworkError, "fetch failed with no cached feed", lastErr)
	}

	feed := c.normalizer.NormalizeTheOddsAPI(c.id, raw)
	c.cache.save(ctx, feed)
	metrics.QuotesCollectedTotal.WithLabelValues(c.id).Add(float64(len(feed.Quotes)))

	return feed, nil
}

// fetchSport fetches the odds listing for one sport key.
func (c *TheOddsAPIClient) fetchSport(ctx context.Context, sportKey string) ([]pipeline.TheOddsAPIEvent, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, sportKey, url.Values{
		"apiKey":     {c.apiKey},
		"regions":    {"eu"},
		"markets":    {"h2h,totals"},
		"oddsFormat": {"decimal"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewProviderError(c.id, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(c.id, ErrCodeNetworkError, "failed to fetch odds", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, NewProviderError(c.id, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusTooManyRequests:
		return nil, NewProviderError(c.id, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, NewProviderError(c.id, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var events []pipeline.TheOddsAPIEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, NewProviderError(c.id, ErrCodeInvalidData, "failed to parse response", err)
	}

	return events, nil
}
