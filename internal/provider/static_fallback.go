package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/metrics"
	"github.com/yourusername/oddsmesh/internal/models"
	"github.com/yourusername/oddsmesh/internal/pipeline"
)

// StaticFallbackProvider serves a fixed fixture list through the regular
// Adapter contract. It stands in for unavailable upstreams in development
// and demo environments; whether it participates is purely a registry
// configuration decision, not special-cased code.
type StaticFallbackProvider struct {
	state
	logger *logrus.Entry
}

// staticFixture describes one synthetic event. Start offsets are relative to
// fetch time so the feed always contains a mix of upcoming and live events.
// Outcomes are an ordered slice so repeated fetches list them identically.
type staticFixture struct {
	id          string
	sportID     int
	league      string
	home, away  string
	startOffset time.Duration
	venue       string
	outcomes    []staticOutcome
}

type staticOutcome struct {
	name  string
	price float64
}

var staticFixtures = []staticFixture{
	{
		id: "sf-1001", sportID: models.SportFootball, league: "Premier League",
		home: "Arsenal FC", away: "Manchester United", startOffset: 6 * time.Hour,
		venue:    "Emirates Stadium",
		outcomes: []staticOutcome{{"Home", 2.10}, {"Draw", 3.40}, {"Away", 3.60}},
	},
	{
		id: "sf-1002", sportID: models.SportFootball, league: "La Liga",
		home: "Real Madrid", away: "Sevilla FC", startOffset: -30 * time.Minute,
		venue:    "Santiago Bernabeu",
		outcomes: []staticOutcome{{"Home", 1.55}, {"Draw", 4.20}, {"Away", 6.00}},
	},
	{
		id: "sf-2001", sportID: models.SportBasketball, league: "NBA",
		home: "Boston Celtics", away: "Denver Nuggets", startOffset: 26 * time.Hour,
		outcomes: []staticOutcome{{"Home", 1.80}, {"Away", 2.05}},
	},
	{
		id: "sf-3001", sportID: models.SportIceHockey, league: "NHL",
		home: "Toronto Maple Leafs", away: "Boston Bruins", startOffset: -1 * time.Hour,
		outcomes: []staticOutcome{{"Home", 2.30}, {"Draw", 4.10}, {"Away", 2.75}},
	},
}

// NewStaticFallbackProvider creates a static fallback adapter.
func NewStaticFallbackProvider(id, name string, weight int, enabled bool, logger *logrus.Entry) *StaticFallbackProvider {
	return &StaticFallbackProvider{
		state:  newState(id, name, weight, enabled),
		logger: logger,
	}
}

// FetchOdds generates the synthetic feed. It never fails.
func (p *StaticFallbackProvider) FetchOdds(ctx context.Context) (*models.ProviderFeed, error) {
	if !p.IsEnabled() {
		return models.EmptyFeed(p.id), NewProviderError(p.id, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	feed := models.EmptyFeed(p.id)
	now := time.Now().UTC()

	for _, fx := range staticFixtures {
		start := now.Add(fx.startOffset).Truncate(time.Minute)
		status := models.EventUpcoming
		if fx.startOffset < 0 {
			status = models.EventLive
		}

		event := &models.Event{
			ID:        p.id + ":" + fx.id,
			SportID:   fx.sportID,
			League:    fx.league,
			Home:      fx.home,
			Away:      fx.away,
			StartTime: start,
			Status:    status,
			Markets:   []*models.Market{},
		}
		if fx.venue != "" {
			venue := fx.venue
			event.Venue = &venue
		}

		market := &models.Market{
			EventID:  event.ID,
			Name:     "Match Winner",
			Status:   models.MarketOpen,
			Outcomes: []*models.Outcome{},
		}

		for _, sel := range fx.outcomes {
			marketID, outcomeID, err := pipeline.BuildIdentity(fx.home, fx.away, start, market.Name, sel.name)
			if err != nil {
				continue
			}
			market.ID = marketID

			market.Outcomes = append(market.Outcomes, &models.Outcome{
				ID:       outcomeID,
				MarketID: marketID,
				Name:     sel.name,
				Status:   models.OutcomeActive,
			})
			feed.Quotes = append(feed.Quotes, models.OddsQuote{
				OutcomeID:  outcomeID,
				MarketID:   marketID,
				EventID:    event.ID,
				ProviderID: p.id,
				Odds:       decimal.NewFromFloat(sel.price),
				Timestamp:  now,
			})
		}

		event.Markets = append(event.Markets, market)
		feed.Events = append(feed.Events, event)
	}

	metrics.QuotesCollectedTotal.WithLabelValues(p.id).Add(float64(len(feed.Quotes)))
	return feed, nil
}
