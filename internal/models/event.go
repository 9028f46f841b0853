package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus describes the lifecycle state of an event
type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventLive     EventStatus = "live"
	EventFinished EventStatus = "finished"
)

// MarketStatus describes the lifecycle state of a market
type MarketStatus string

const (
	MarketOpen    MarketStatus = "open"
	MarketClosed  MarketStatus = "closed"
	MarketSettled MarketStatus = "settled"
)

// OutcomeStatus describes the state of a single selection
type OutcomeStatus string

const (
	OutcomeActive   OutcomeStatus = "active"
	OutcomeInactive OutcomeStatus = "inactive"
	OutcomeWinner   OutcomeStatus = "winner"
	OutcomeLoser    OutcomeStatus = "loser"
)

// Event represents a single sporting event. IDs are provider-prefixed
// (e.g. "theoddsapi:4fa2...") so events from different providers never collide.
type Event struct {
	ID        string      `json:"id"`
	SportID   int         `json:"sport_id"`
	League    string      `json:"league"`
	Home      string      `json:"home"`
	Away      string      `json:"away"`
	StartTime time.Time   `json:"start_time"`
	Status    EventStatus `json:"status"`
	Venue     *string     `json:"venue,omitempty"`
	Markets   []*Market   `json:"markets"`
}

// Market is a named group of mutually exclusive outcomes for one event
type Market struct {
	ID       string       `json:"id"`
	EventID  string       `json:"event_id"`
	Name     string       `json:"name"`
	Status   MarketStatus `json:"status"`
	Outcomes []*Outcome   `json:"outcomes"`
}

// Outcome is a single wagerable selection within a market. Odds holds the
// aggregator's consensus value and is nil until at least one pass has
// contributed a quote. Providers records how many providers contributed to
// the current consensus.
type Outcome struct {
	ID        string           `json:"id"`
	MarketID  string           `json:"market_id"`
	Name      string           `json:"name"`
	Odds      *decimal.Decimal `json:"odds,omitempty"`
	Status    OutcomeStatus    `json:"status"`
	Providers int              `json:"providers,omitempty"`
}

// IsLive reports whether the event is currently in play
func (e *Event) IsLive() bool {
	return e.Status == EventLive
}

// MatchKey builds a normalized cross-provider identity key for an event.
// Two providers reporting the same real-world match usually agree on team
// names and kickoff to within the hour; the key is deliberately coarse and
// collisions are tolerated (ambiguous duplicates may coexist).
func (e *Event) MatchKey() string {
	return MatchKey(e.Home, e.Away, e.StartTime)
}

// MatchKey builds the normalized identity key from raw fields.
func MatchKey(home, away string, start time.Time) string {
	ts := "unknown-time"
	if !start.IsZero() {
		ts = start.UTC().Truncate(time.Hour).Format(time.RFC3339)
	}
	return normalizeKeyPart(home) + "|" + normalizeKeyPart(away) + "|" + ts
}

func normalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "|", " ")
	return strings.Join(strings.Fields(s), " ")
}
