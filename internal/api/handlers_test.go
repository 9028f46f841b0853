package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/oddsmesh/internal/aggregate"
	"github.com/yourusername/oddsmesh/internal/config"
	"github.com/yourusername/oddsmesh/internal/models"
	"github.com/yourusername/oddsmesh/internal/pipeline"
	"github.com/yourusername/oddsmesh/internal/provider"
	"github.com/yourusername/oddsmesh/internal/service"
)

func testFeed(providerID string) *models.ProviderFeed {
	start := time.Now().Add(3 * time.Hour).Truncate(time.Minute).UTC()
	marketID, outcomeID, _ := pipeline.BuildIdentity("Arsenal", "Chelsea", start, "Match Winner", "Home")
	eventID := providerID + ":1"

	feed := models.EmptyFeed(providerID)
	feed.Events = append(feed.Events, &models.Event{
		ID:        eventID,
		SportID:   models.SportFootball,
		League:    "Premier League",
		Home:      "Arsenal",
		Away:      "Chelsea",
		StartTime: start,
		Status:    models.EventUpcoming,
		Markets: []*models.Market{
			{
				ID:      marketID,
				EventID: eventID,
				Name:    "Match Winner",
				Status:  models.MarketOpen,
				Outcomes: []*models.Outcome{
					{ID: outcomeID, MarketID: marketID, Name: "Home", Status: models.OutcomeActive},
				},
			},
		},
	})
	feed.Quotes = append(feed.Quotes, models.OddsQuote{
		OutcomeID:  outcomeID,
		MarketID:   marketID,
		EventID:    eventID,
		ProviderID: providerID,
		Odds:       decimal.NewFromFloat(2.0),
		Timestamp:  time.Now(),
	})
	return feed
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	sports := models.DefaultSportCatalog()
	holder := aggregate.NewHolder(sports)
	agg := aggregate.NewAggregator(sports, nil)

	snap, _ := agg.BuildSnapshot(nil, []*models.ProviderFeed{testFeed("test")}, map[string]int{"test": 80}, map[string]bool{"test": true})
	holder.Swap(snap)

	registry := provider.NewRegistry(nil)
	registry.Add(provider.NewStaticFallbackProvider("static", "Static Fallback", 10, true, nil))

	query := service.NewQuery(holder, registry, nil, nil)
	hub := NewHub(nil)

	return NewServer(config.APIConfig{Port: 8080, AllowedOrigins: []string{"*"}}, query, registry, hub, nil)
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	return rec
}

func TestGetSportsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/sports", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, len(models.DefaultSportCatalog()), resp.Count)
}

func TestGetEventsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int            `json:"count"`
		Data  []models.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Arsenal", resp.Data[0].Home)
}

func TestGetEventsBadFilter(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/events?sport=soccer", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/events?live=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEventNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/events/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "event not found", resp.Error)
}

func TestToggleProviderEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/providers/static/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp toggleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Enabled)

	// Explicit state.
	body, _ := json.Marshal(map[string]bool{"enabled": true})
	rec = doRequest(s, http.MethodPost, "/api/providers/static/toggle", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Enabled)
}

func TestToggleUnknownProvider(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/providers/nope/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetWeightEndpoint(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(map[string]int{"weight": 42})
	rec := doRequest(s, http.MethodPut, "/api/providers/static/weight", body)
	require.Equal(t, http.StatusOK, rec.Code)

	adapter, _ := s.registry.Get("static")
	assert.Equal(t, 42, adapter.Weight())
}

func TestSetWeightValidation(t *testing.T) {
	s := newTestServer(t)

	// Missing weight field.
	rec := doRequest(s, http.MethodPut, "/api/providers/static/weight", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Out of range.
	body, _ := json.Marshal(map[string]int{"weight": 150})
	rec = doRequest(s, http.MethodPut, "/api/providers/static/weight", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown provider.
	body, _ = json.Marshal(map[string]int{"weight": 50})
	rec = doRequest(s, http.MethodPut, "/api/providers/nope/weight", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStatusEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Events)
	require.Len(t, resp.Providers, 1)
}
