package pipeline

import (
	"time"

	"github.com/yourusername/oddsmesh/internal/models"
)

// TheOddsAPIEvent is the raw event shape returned by The Odds API v4
// /sports/{key}/odds endpoint.
type TheOddsAPIEvent struct {
	ID           string               `json:"id"`
	SportKey     string               `json:"sport_key"`
	SportTitle   string               `json:"sport_title"`
	CommenceTime time.Time            `json:"commence_time"`
	HomeTeam     string               `json:"home_team"`
	AwayTeam     string               `json:"away_team"`
	Bookmakers   []TheOddsAPIBookmaker `json:"bookmakers"`
}

// TheOddsAPIBookmaker is one bookmaker's price set within an event
type TheOddsAPIBookmaker struct {
	Key        string             `json:"key"`
	Title      string             `json:"title"`
	LastUpdate time.Time          `json:"last_update"`
	Markets    []TheOddsAPIMarket `json:"markets"`
}

// TheOddsAPIMarket is a market within a bookmaker
type TheOddsAPIMarket struct {
	Key      string              `json:"key"`
	Outcomes []TheOddsAPIOutcome `json:"outcomes"`
}

// TheOddsAPIOutcome is a priced selection
type TheOddsAPIOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// theOddsAPIMarketNames maps The Odds API market keys to canonical display
// names. Unmapped keys pass through as-is.
var theOddsAPIMarketNames = map[string]string{
	"h2h":     "Match Winner",
	"totals":  "Total Points",
	"spreads": "Handicap",
}

// NormalizeTheOddsAPI converts a raw The Odds API payload into a provider
// feed. The upstream quotes many bookmakers per event; the first bookmaker
// listing a market supplies this provider's quote for it, keeping one quote
// per outcome per provider.
func (n *Normalizer) NormalizeTheOddsAPI(providerID string, raw []TheOddsAPIEvent) *models.ProviderFeed {
	feed := models.EmptyFeed(providerID)
	now := time.Now().UTC()

	for _, rawEvent := range raw {
		if rawEvent.ID == "" || rawEvent.HomeTeam == "" || rawEvent.AwayTeam == "" {
			n.dropQuote(providerID, ReasonMissingIdentity, nil)
			continue
		}

		event := &models.Event{
			ID:        providerID + ":" + rawEvent.ID,
			SportID:   ClassifySport(rawEvent.SportKey, rawEvent.SportTitle, rawEvent.HomeTeam, rawEvent.AwayTeam),
			League:    rawEvent.SportTitle,
			Home:      rawEvent.HomeTeam,
			Away:      rawEvent.AwayTeam,
			StartTime: rawEvent.CommenceTime.UTC(),
			Status:    eventStatusFromTime(rawEvent.CommenceTime, now),
			Markets:   []*models.Market{},
		}

		seenMarkets := make(map[string]bool)
		for _, bookmaker := range rawEvent.Bookmakers {
			for _, rawMarket := range bookmaker.Markets {
				if seenMarkets[rawMarket.Key] {
					continue
				}
				seenMarkets[rawMarket.Key] = true

				marketName := rawMarket.Key
				if mapped, ok := theOddsAPIMarketNames[rawMarket.Key]; ok {
					marketName = mapped
				}

				for _, rawOutcome := range rawMarket.Outcomes {
					marketID, outcomeID, err := BuildIdentity(
						rawEvent.HomeTeam, rawEvent.AwayTeam, rawEvent.CommenceTime,
						marketName, rawOutcome.Name,
					)
					if err != nil {
						n.dropQuote(providerID, ReasonMissingIdentity, err)
						continue
					}

					odds, reason, err := ParseOddsFloat(rawOutcome.Price)
					if err != nil {
						n.dropQuote(providerID, reason, err)
						continue
					}

					market := marketByID(event, marketID, marketName)
					outcomeByID(market, outcomeID, rawOutcome.Name)

					feed.Quotes = append(feed.Quotes, models.OddsQuote{
						OutcomeID:  outcomeID,
						MarketID:   marketID,
						EventID:    event.ID,
						ProviderID: providerID,
						Odds:       odds,
						Timestamp:  bookmaker.LastUpdate.UTC(),
					})
				}
			}
		}

		closeSettledEvent(event)
		feed.Events = append(feed.Events, event)
	}

	return feed
}
