package pipeline

import (
	"strconv"
	"time"

	"github.com/yourusername/oddsmesh/internal/models"
)

// APIFootballOddsResponse is the raw envelope returned by the API-Football
// v3 /odds endpoint.
type APIFootballOddsResponse struct {
	Response []APIFootballFixtureOdds `json:"response"`
}

// APIFootballFixtureOdds carries one fixture with its bookmaker prices
type APIFootballFixtureOdds struct {
	Fixture    APIFootballFixture    `json:"fixture"`
	League     APIFootballLeague     `json:"league"`
	Teams      APIFootballTeams      `json:"teams"`
	Bookmakers []APIFootballBookmaker `json:"bookmakers"`
}

// APIFootballFixture is the fixture descriptor
type APIFootballFixture struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Venue  struct {
		Name string `json:"name"`
	} `json:"venue"`
	Status struct {
		Short string `json:"short"`
	} `json:"status"`
}

// APIFootballLeague is the league descriptor
type APIFootballLeague struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// APIFootballTeams holds the participants
type APIFootballTeams struct {
	Home struct {
		Name string `json:"name"`
	} `json:"home"`
	Away struct {
		Name string `json:"name"`
	} `json:"away"`
}

// APIFootballBookmaker is one bookmaker's bets for a fixture
type APIFootballBookmaker struct {
	ID   int              `json:"id"`
	Name string           `json:"name"`
	Bets []APIFootballBet `json:"bets"`
}

// APIFootballBet is a market with its priced values
type APIFootballBet struct {
	ID     int                   `json:"id"`
	Name   string                `json:"name"`
	Values []APIFootballBetValue `json:"values"`
}

// APIFootballBetValue is one priced selection; odds arrive as strings
type APIFootballBetValue struct {
	Value string `json:"value"`
	Odd   string `json:"odd"`
}

// apiFootballLiveStatuses are fixture status codes meaning in-play.
var apiFootballLiveStatuses = map[string]bool{
	"1H": true, "HT": true, "2H": true, "ET": true, "BT": true, "P": true, "LIVE": true,
}

// apiFootballFinishedStatuses are fixture status codes meaning completed.
var apiFootballFinishedStatuses = map[string]bool{
	"FT": true, "AET": true, "PEN": true, "AWD": true, "WO": true,
}

// NormalizeAPIFootball converts a raw API-Football odds payload into a
// provider feed. The upstream is football-only, so no sport classification
// heuristic is needed.
func (n *Normalizer) NormalizeAPIFootball(providerID string, raw *APIFootballOddsResponse) *models.ProviderFeed {
	feed := models.EmptyFeed(providerID)
	now := time.Now().UTC()

	for _, fx := range raw.Response {
		home := fx.Teams.Home.Name
		away := fx.Teams.Away.Name
		if fx.Fixture.ID == 0 || home == "" || away == "" {
			n.dropQuote(providerID, ReasonMissingIdentity, nil)
			continue
		}

		start, err := time.Parse(time.RFC3339, fx.Fixture.Date)
		if err != nil {
			n.dropQuote(providerID, ReasonMissingIdentity, err)
			continue
		}

		event := &models.Event{
			ID:        providerID + ":" + formatFixtureID(fx.Fixture.ID),
			SportID:   models.SportFootball,
			League:    fx.League.Name,
			Home:      home,
			Away:      away,
			StartTime: start.UTC(),
			Status:    apiFootballStatus(fx.Fixture.Status.Short, start, now),
			Markets:   []*models.Market{},
		}
		if fx.Fixture.Venue.Name != "" {
			venue := fx.Fixture.Venue.Name
			event.Venue = &venue
		}

		seenBets := make(map[string]bool)
		for _, bookmaker := range fx.Bookmakers {
			for _, bet := range bookmaker.Bets {
				if seenBets[bet.Name] {
					continue
				}
				seenBets[bet.Name] = true

				for _, value := range bet.Values {
					marketID, outcomeID, err := BuildIdentity(home, away, start, bet.Name, value.Value)
					if err != nil {
						n.dropQuote(providerID, ReasonMissingIdentity, err)
						continue
					}

					odds, reason, err := ParseOdds(value.Odd)
					if err != nil {
						n.dropQuote(providerID, reason, err)
						continue
					}

					market := marketByID(event, marketID, bet.Name)
					outcomeByID(market, outcomeID, value.Value)

					feed.Quotes = append(feed.Quotes, models.OddsQuote{
						OutcomeID:  outcomeID,
						MarketID:   marketID,
						EventID:    event.ID,
						ProviderID: providerID,
						Odds:       odds,
						Timestamp:  now,
					})
				}
			}
		}

		closeSettledEvent(event)
		feed.Events = append(feed.Events, event)
	}

	return feed
}

// apiFootballStatus maps fixture status codes to the canonical lifecycle,
// falling back to the time heuristic for unknown codes.
func apiFootballStatus(short string, start, now time.Time) models.EventStatus {
	switch {
	case short == "NS" || short == "TBD" || short == "PST":
		return models.EventUpcoming
	case apiFootballLiveStatuses[short]:
		return models.EventLive
	case apiFootballFinishedStatuses[short]:
		return models.EventFinished
	default:
		return eventStatusFromTime(start, now)
	}
}

func formatFixtureID(id int64) string {
	return strconv.FormatInt(id, 10)
}
