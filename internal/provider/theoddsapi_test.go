package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/oddsmesh/internal/pipeline"
	"github.com/yourusername/oddsmesh/internal/store"
)

func oddsAPIPayload() []pipeline.TheOddsAPIEvent {
	return []pipeline.TheOddsAPIEvent{
		{
			ID:           "ev1",
			SportKey:     "soccer_epl",
			SportTitle:   "EPL",
			CommenceTime: time.Now().Add(2 * time.Hour).UTC(),
			HomeTeam:     "Arsenal",
			AwayTeam:     "Chelsea",
			Bookmakers: []pipeline.TheOddsAPIBookmaker{
				{
					Key:        "bookie",
					LastUpdate: time.Now().UTC(),
					Markets: []pipeline.TheOddsAPIMarket{
						{
							Key: "h2h",
							Outcomes: []pipeline.TheOddsAPIOutcome{
								{Name: "Arsenal", Price: 2.10},
								{Name: "Chelsea", Price: 3.40},
							},
						},
					},
				},
			},
		},
	}
}

func newOddsAPIClient(baseURL string, kv store.Store) *TheOddsAPIClient {
	return NewTheOddsAPIClient(TheOddsAPIOptions{
		ID:        "oddsapi",
		Name:      "The Odds API",
		Weight:    80,
		Enabled:   true,
		APIKey:    "test-key",
		BaseURL:   baseURL,
		SportKeys: []string{"soccer_epl"},
		Timeout:   5 * time.Second,
		Staleness: time.Minute,
		RateLimit: 100,
	}, kv, pipeline.NewNormalizer(nil), nil)
}

func TestTheOddsAPIFetch(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports/soccer_epl/odds", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		json.NewEncoder(w).Encode(oddsAPIPayload())
	}))
	defer upstream.Close()

	kv := store.NewMemoryStore(time.Minute)
	defer kv.Close()
	client := newOddsAPIClient(upstream.URL, kv)

	feed, err := client.FetchOdds(context.Background())
	require.NoError(t, err)
	require.Len(t, feed.Events, 1)
	assert.Equal(t, "oddsapi:ev1", feed.Events[0].ID)
	assert.Len(t, feed.Quotes, 2)
}

func TestTheOddsAPIFallsBackToCachedFeed(t *testing.T) {
	var failing atomic.Bool
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(oddsAPIPayload())
	}))
	defer upstream.Close()

	kv := store.NewMemoryStore(time.Minute)
	defer kv.Close()
	client := newOddsAPIClient(upstream.URL, kv)

	// Successful fetch primes the cache.
	_, err := client.FetchOdds(context.Background())
	require.NoError(t, err)

	failing.Store(true)
	feed, err := client.FetchOdds(context.Background())

	require.Error(t, err, "failed live fetch must still be reported")
	require.NotNil(t, feed)
	assert.Len(t, feed.Events, 1, "cached feed must be served while within staleness")
	assert.Len(t, feed.Quotes, 2)
}

func TestTheOddsAPIEmptyFeedWithoutCache(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer upstream.Close()

	kv := store.NewMemoryStore(time.Minute)
	defer kv.Close()
	client := newOddsAPIClient(upstream.URL, kv)

	feed, err := client.FetchOdds(context.Background())

	require.Error(t, err)
	require.NotNil(t, feed)
	assert.Empty(t, feed.Events)
	assert.Empty(t, feed.Quotes)
}

func TestTheOddsAPIDisabled(t *testing.T) {
	kv := store.NewMemoryStore(time.Minute)
	defer kv.Close()
	client := newOddsAPIClient("http://unused.invalid", kv)
	client.SetEnabled(false)

	feed, err := client.FetchOdds(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderDisabled)
	assert.Empty(t, feed.Events)
}

func TestStaticFallbackProviderAlwaysSucceeds(t *testing.T) {
	p := NewStaticFallbackProvider("static", "Static Fallback", 10, true, nil)

	feed, err := p.FetchOdds(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, feed.Events)
	assert.NotEmpty(t, feed.Quotes)

	// Each quoted outcome belongs to a market on one of the events.
	outcomes := make(map[string]bool)
	for _, e := range feed.Events {
		for _, m := range e.Markets {
			for _, o := range m.Outcomes {
				outcomes[o.ID] = true
			}
		}
	}
	for _, q := range feed.Quotes {
		assert.True(t, outcomes[q.OutcomeID])
	}
}

func TestStaticFallbackFeedOrderingIsStable(t *testing.T) {
	p := NewStaticFallbackProvider("static", "Static Fallback", 10, true, nil)

	first, err := p.FetchOdds(context.Background())
	require.NoError(t, err)
	second, err := p.FetchOdds(context.Background())
	require.NoError(t, err)

	require.Equal(t, len(first.Quotes), len(second.Quotes))
	for i := range first.Quotes {
		assert.Equal(t, first.Quotes[i].OutcomeID, second.Quotes[i].OutcomeID)
	}

	require.Equal(t, len(first.Events), len(second.Events))
	for i, event := range first.Events {
		for j, market := range event.Markets {
			other := second.Events[i].Markets[j]
			require.Equal(t, len(market.Outcomes), len(other.Outcomes))
			for k, outcome := range market.Outcomes {
				assert.Equal(t, outcome.Name, other.Outcomes[k].Name)
			}
		}
	}
}
