package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OddsQuote is one provider's price for one outcome, collected during a
// single aggregation pass. Quotes are ephemeral: they are consumed by the
// aggregator and discarded, never persisted.
type OddsQuote struct {
	OutcomeID  string          `json:"outcome_id"`
	MarketID   string          `json:"market_id"`
	EventID    string          `json:"event_id"`
	ProviderID string          `json:"provider_id"`
	Odds       decimal.Decimal `json:"odds"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ProviderFeed is the normalized output of one provider fetch: the canonical
// events the provider reported (markets and outcomes nested) plus the flat
// list of quotes feeding the aggregator.
type ProviderFeed struct {
	ProviderID string      `json:"provider_id"`
	Events     []*Event    `json:"events"`
	Quotes     []OddsQuote `json:"quotes"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

// EmptyFeed returns a feed with no events or quotes for the given provider.
func EmptyFeed(providerID string) *ProviderFeed {
	return &ProviderFeed{
		ProviderID: providerID,
		Events:     []*Event{},
		Quotes:     []OddsQuote{},
		FetchedAt:  time.Now().UTC(),
	}
}

// ProviderInfo is the registry's external view of a configured provider.
type ProviderInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Weight  int    `json:"weight"`
	Enabled bool   `json:"enabled"`
}

// MinOdds is the lowest decimal odds value the pipeline accepts. Quotes at
// or below evens carry no payout and are dropped before the merge.
var MinOdds = decimal.NewFromInt(1)
