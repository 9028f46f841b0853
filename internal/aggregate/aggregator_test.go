package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/oddsmesh/internal/models"
	"github.com/yourusername/oddsmesh/internal/pipeline"
)

var testKickoff = time.Date(2026, 8, 25, 19, 30, 0, 0, time.UTC)

type feedOutcome struct {
	name  string
	price float64
}

// makeFeedAt builds a single-event feed for the Arsenal v Chelsea match
// winner market, quoting each listed outcome.
func makeFeedAt(t *testing.T, providerID string, kickoff time.Time, status models.EventStatus, outcomes ...feedOutcome) *models.ProviderFeed {
	t.Helper()

	eventID := providerID + ":100"
	event := &models.Event{
		ID:        eventID,
		SportID:   models.SportFootball,
		League:    "Premier League",
		Home:      "Arsenal",
		Away:      "Chelsea",
		StartTime: kickoff,
		Status:    status,
	}
	market := &models.Market{
		EventID: eventID,
		Name:    "Match Winner",
		Status:  models.MarketOpen,
	}

	feed := models.EmptyFeed(providerID)
	for _, sel := range outcomes {
		marketID, outcomeID, err := pipeline.BuildIdentity("Arsenal", "Chelsea", kickoff, "Match Winner", sel.name)
		require.NoError(t, err)
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
			EventID:    eventID,
			ProviderID: providerID,
			Odds:       decimal.NewFromFloat(sel.price),
			Timestamp:  time.Now(),
		})
	}

	event.Markets = append(event.Markets, market)
	feed.Events = append(feed.Events, event)
	return feed
}

// makeFeed quotes only the "Home" outcome at the given price.
func makeFeed(t *testing.T, providerID string, price float64) *models.ProviderFeed {
	return makeFeedAt(t, providerID, testKickoff, models.EventUpcoming, feedOutcome{"Home", price})
}

func homeOutcome(t *testing.T, snap *Snapshot) *models.Outcome {
	t.Helper()
	events := snap.Events()
	require.Len(t, events, 1)
	require.Len(t, events[0].Markets, 1)
	require.NotEmpty(t, events[0].Markets[0].Outcomes)
	for _, o := range events[0].Markets[0].Outcomes {
		if o.Name == "Home" {
			return o
		}
	}
	t.Fatal("home outcome not found")
	return nil
}

func TestWeightedConsensus(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)

	feeds := []*models.ProviderFeed{
		makeFeed(t, "a", 2.00),
		makeFeed(t, "b", 2.35),
	}
	weights := map[string]int{"a": 80, "b": 60}
	enabled := map[string]bool{"a": true, "b": true}

	snap, stats := agg.BuildSnapshot(nil, feeds, weights, enabled)

	outcome := homeOutcome(t, snap)
	require.NotNil(t, outcome.Odds)
	// (2.00*80 + 2.35*60) / 140 = 2.15
	assert.True(t, outcome.Odds.Equal(decimal.NewFromFloat(2.15)), "expected 2.15, got %s", outcome.Odds)
	assert.Equal(t, 2, outcome.Providers)
	assert.Equal(t, 2, stats.QuotesSeen)
	assert.Equal(t, 2, stats.QuotesUsed)
	assert.Equal(t, 1, stats.Events)
}

func TestSingleQuotePassesThroughUnweighted(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)

	feeds := []*models.ProviderFeed{makeFeed(t, "a", 3.25)}
	snap, _ := agg.BuildSnapshot(nil, feeds, map[string]int{"a": 5}, map[string]bool{"a": true})

	outcome := homeOutcome(t, snap)
	require.NotNil(t, outcome.Odds)
	assert.True(t, outcome.Odds.Equal(decimal.NewFromFloat(3.25)))
	assert.Equal(t, 1, outcome.Providers)
}

func TestZeroWeightSumRetainsPrevious(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)
	weights := map[string]int{"a": 80, "b": 0}
	enabled := map[string]bool{"a": true, "b": true}

	prev, _ := agg.BuildSnapshot(nil, []*models.ProviderFeed{makeFeed(t, "a", 2.50)}, weights, enabled)
	prevOutcome := homeOutcome(t, prev)
	require.NotNil(t, prevOutcome.Odds)

	// Next pass only the zero-weight provider reports.
	next, stats := agg.BuildSnapshot(prev, []*models.ProviderFeed{makeFeed(t, "b", 9.99)}, weights, enabled)

	outcome := homeOutcome(t, next)
	require.NotNil(t, outcome.Odds)
	assert.True(t, outcome.Odds.Equal(decimal.NewFromFloat(2.50)), "zero weight sum must not overwrite consensus")
	assert.Equal(t, prevOutcome.Providers, outcome.Providers)
	assert.Equal(t, 1, stats.RetainedOutcomes)
}

func TestNoQuotesRetainsPrevious(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)
	weights := map[string]int{"a": 80}
	enabled := map[string]bool{"a": true}

	prev, _ := agg.BuildSnapshot(nil, []*models.ProviderFeed{makeFeed(t, "a", 2.50)}, weights, enabled)

	// Same event structure but no quotes at all this pass.
	stale := makeFeed(t, "a", 2.50)
	stale.Quotes = nil

	next, stats := agg.BuildSnapshot(prev, []*models.ProviderFeed{stale}, weights, enabled)

	outcome := homeOutcome(t, next)
	require.NotNil(t, outcome.Odds)
	assert.True(t, outcome.Odds.Equal(decimal.NewFromFloat(2.50)))
	assert.Equal(t, 1, outcome.Providers)
	assert.Equal(t, 1, stats.RetainedOutcomes)
}

func TestDisabledProviderQuotesDiscarded(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)

	feeds := []*models.ProviderFeed{
		makeFeed(t, "a", 2.00),
		makeFeed(t, "b", 2.35),
	}
	weights := map[string]int{"a": 80, "b": 60}
	enabled := map[string]bool{"a": true, "b": false}

	snap, stats := agg.BuildSnapshot(nil, feeds, weights, enabled)

	outcome := homeOutcome(t, snap)
	require.NotNil(t, outcome.Odds)
	assert.True(t, outcome.Odds.Equal(decimal.NewFromFloat(2.00)), "disabled provider must not influence consensus")
	assert.Equal(t, 1, outcome.Providers)
	assert.Equal(t, 1, stats.QuotesUsed)
}

func TestUnattributableProviderQuotesDiscarded(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)

	feeds := []*models.ProviderFeed{
		makeFeed(t, "a", 2.00),
		makeFeed(t, "ghost", 50.0),
	}
	// No weight entry for "ghost".
	weights := map[string]int{"a": 80}
	enabled := map[string]bool{"a": true, "ghost": true}

	snap, _ := agg.BuildSnapshot(nil, feeds, weights, enabled)

	outcome := homeOutcome(t, snap)
	require.NotNil(t, outcome.Odds)
	assert.True(t, outcome.Odds.Equal(decimal.NewFromFloat(2.00)))
}

func TestEventsMergeByMatchKey(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)

	feeds := []*models.ProviderFeed{
		makeFeed(t, "a", 2.00),
		makeFeed(t, "b", 2.20),
	}
	weights := map[string]int{"a": 50, "b": 50}
	enabled := map[string]bool{"a": true, "b": true}

	snap, stats := agg.BuildSnapshot(nil, feeds, weights, enabled)

	assert.Equal(t, 1, snap.EventCount(), "same match from two providers must collapse into one event")
	assert.Equal(t, 1, stats.Events)

	// Canonical event keeps the first reporter's id.
	_, found := snap.EventByID("a:100")
	assert.True(t, found)
}

func TestLastQuotePerProviderWins(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)

	feed := makeFeed(t, "a", 2.00)
	// A second quote from the same provider for the same outcome.
	dup := feed.Quotes[0]
	dup.Odds = decimal.NewFromFloat(2.40)
	feed.Quotes = append(feed.Quotes, dup)

	snap, stats := agg.BuildSnapshot(nil, []*models.ProviderFeed{feed}, map[string]int{"a": 80}, map[string]bool{"a": true})

	outcome := homeOutcome(t, snap)
	require.NotNil(t, outcome.Odds)
	assert.True(t, outcome.Odds.Equal(decimal.NewFromFloat(2.40)))
	assert.Equal(t, 1, outcome.Providers)
	assert.Equal(t, 2, stats.QuotesSeen)
	assert.Equal(t, 1, stats.QuotesUsed)
}

func TestUnreportedEventCarriesForward(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)
	weights := map[string]int{"x": 70}
	kickoff := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Hour)

	prev, _ := agg.BuildSnapshot(nil,
		[]*models.ProviderFeed{makeFeedAt(t, "x", kickoff, models.EventUpcoming, feedOutcome{"Home", 2.50})},
		weights, map[string]bool{"x": true})
	require.Equal(t, 1, prev.EventCount())

	// Next pass the provider is disabled, so no feed mentions the event.
	next, stats := agg.BuildSnapshot(prev, nil, weights, map[string]bool{"x": false})

	require.Equal(t, 1, next.EventCount(), "event known only to the disabled provider must stay readable")
	event, found := next.EventByID("x:100")
	require.True(t, found)
	require.Len(t, event.Markets, 1)
	require.Len(t, event.Markets[0].Outcomes, 1)

	outcome := event.Markets[0].Outcomes[0]
	require.NotNil(t, outcome.Odds)
	assert.True(t, outcome.Odds.Equal(decimal.NewFromFloat(2.50)), "carried outcome must keep its last consensus")
	assert.Equal(t, 1, outcome.Providers)
	assert.Equal(t, 1, stats.RetainedOutcomes)
	assert.Equal(t, 1, stats.Events)
}

func TestCarriedEventDoesNotMutatePreviousSnapshot(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)
	weights := map[string]int{"x": 70}
	kickoff := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Hour)

	prev, _ := agg.BuildSnapshot(nil,
		[]*models.ProviderFeed{makeFeedAt(t, "x", kickoff, models.EventUpcoming, feedOutcome{"Home", 2.50})},
		weights, map[string]bool{"x": true})

	next, _ := agg.BuildSnapshot(prev, nil, weights, map[string]bool{"x": false})

	prevEvent, _ := prev.EventByID("x:100")
	nextEvent, _ := next.EventByID("x:100")
	require.NotNil(t, prevEvent)
	require.NotNil(t, nextEvent)
	assert.NotSame(t, prevEvent, nextEvent)
	assert.NotSame(t, prevEvent.Markets[0].Outcomes[0], nextEvent.Markets[0].Outcomes[0])
}

func TestFinishedEventsAreNotCarried(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)
	weights := map[string]int{"x": 70}
	kickoff := time.Now().Add(-6 * time.Hour).UTC().Truncate(time.Hour)

	prev, _ := agg.BuildSnapshot(nil,
		[]*models.ProviderFeed{makeFeedAt(t, "x", kickoff, models.EventFinished, feedOutcome{"Home", 2.50})},
		weights, map[string]bool{"x": true})
	require.Equal(t, 1, prev.EventCount())

	next, _ := agg.BuildSnapshot(prev, nil, weights, map[string]bool{"x": false})
	assert.Equal(t, 0, next.EventCount())
}

func TestCarryStopsPastTheLiveWindow(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)
	weights := map[string]int{"x": 70}
	// Still marked live in the previous snapshot but kicked off long ago.
	kickoff := time.Now().Add(-5 * time.Hour).UTC().Truncate(time.Hour)

	prev, _ := agg.BuildSnapshot(nil,
		[]*models.ProviderFeed{makeFeedAt(t, "x", kickoff, models.EventLive, feedOutcome{"Home", 2.50})},
		weights, map[string]bool{"x": true})
	require.Equal(t, 1, prev.EventCount())

	next, _ := agg.BuildSnapshot(prev, nil, weights, map[string]bool{"x": false})
	assert.Equal(t, 0, next.EventCount(), "stale events must age out instead of being carried forever")
}

func TestDroppedOutcomeRetainsWithinReportedEvent(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)
	weights := map[string]int{"x": 70}
	enabled := map[string]bool{"x": true}

	prev, _ := agg.BuildSnapshot(nil,
		[]*models.ProviderFeed{makeFeedAt(t, "x", testKickoff, models.EventUpcoming,
			feedOutcome{"Home", 2.10}, feedOutcome{"Draw", 3.40})},
		weights, enabled)

	// Next pass the provider stops listing Draw entirely.
	next, stats := agg.BuildSnapshot(prev,
		[]*models.ProviderFeed{makeFeedAt(t, "x", testKickoff, models.EventUpcoming, feedOutcome{"Home", 2.20})},
		weights, enabled)

	event, found := next.EventByID("x:100")
	require.True(t, found)
	require.Len(t, event.Markets, 1)
	require.Len(t, event.Markets[0].Outcomes, 2, "unlisted outcome must be grafted back")

	var draw *models.Outcome
	for _, o := range event.Markets[0].Outcomes {
		if o.Name == "Draw" {
			draw = o
		}
	}
	require.NotNil(t, draw)
	require.NotNil(t, draw.Odds)
	assert.True(t, draw.Odds.Equal(decimal.NewFromFloat(3.40)))
	assert.Equal(t, 1, stats.RetainedOutcomes)
}

func TestInactiveOutcomeDoesNotRetain(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)
	weights := map[string]int{"x": 70}
	enabled := map[string]bool{"x": true}

	prev, _ := agg.BuildSnapshot(nil, []*models.ProviderFeed{makeFeed(t, "x", 2.50)}, weights, enabled)

	settled := makeFeed(t, "x", 2.50)
	settled.Quotes = nil
	settled.Events[0].Markets[0].Outcomes[0].Status = models.OutcomeInactive

	next, stats := agg.BuildSnapshot(prev, []*models.ProviderFeed{settled}, weights, enabled)

	outcome := homeOutcome(t, next)
	assert.Nil(t, outcome.Odds, "a settled selection must not inherit the previous consensus")
	assert.Equal(t, 0, stats.RetainedOutcomes)
}

func TestEmptyFeedsProduceEmptySnapshot(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)

	snap, stats := agg.BuildSnapshot(nil, nil, map[string]int{}, map[string]bool{})

	assert.Equal(t, 0, snap.EventCount())
	assert.Equal(t, 0, stats.QuotesSeen)
	assert.NotNil(t, snap.Events())
}
