// Package pipeline converts provider-specific raw payloads into the
// canonical event/market/outcome model and a flat list of odds quotes. Each
// supported upstream has its own tagged payload shape and an explicit
// normalization function; there is no generic duck-typed path.
package pipeline

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/metrics"
	"github.com/yourusername/oddsmesh/internal/models"
)

// Normalizer transforms raw provider payloads into canonical records.
// Individual bad records are dropped with a logged reason; siblings from the
// same payload are still processed.
type Normalizer struct {
	logger *logrus.Entry
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger *logrus.Entry) *Normalizer {
	return &Normalizer{logger: logger}
}

// dropQuote logs and counts a rejected raw quote.
func (n *Normalizer) dropQuote(providerID, reason string, err error) {
	metrics.RecordQuoteDropped(providerID, reason)
	if n.logger != nil {
		n.logger.WithFields(logrus.Fields{
			"provider": providerID,
			"reason":   reason,
		}).WithError(err).Debug("Dropped raw quote")
	}
}

// eventStatusFromTime infers lifecycle status for feeds that carry only a
// start time. Events are considered live from kickoff until a conservative
// upper bound on match duration.
func eventStatusFromTime(start time.Time, now time.Time) models.EventStatus {
	switch {
	case now.Before(start):
		return models.EventUpcoming
	case now.Before(start.Add(4 * time.Hour)):
		return models.EventLive
	default:
		return models.EventFinished
	}
}

// closeSettledEvent marks a finished event's markets closed and its
// selections inactive, ending consensus retention for them downstream.
func closeSettledEvent(event *models.Event) {
	if event.Status != models.EventFinished {
		return
	}
	for _, market := range event.Markets {
		market.Status = models.MarketClosed
		for _, outcome := range market.Outcomes {
			outcome.Status = models.OutcomeInactive
		}
	}
}

// marketByID returns the market with the given id, creating and appending it
// when absent.
func marketByID(event *models.Event, marketID, name string) *models.Market {
	for _, m := range event.Markets {
		if m.ID == marketID {
			return m
		}
	}
	m := &models.Market{
		ID:       marketID,
		EventID:  event.ID,
		Name:     name,
		Status:   models.MarketOpen,
		Outcomes: []*models.Outcome{},
	}
	event.Markets = append(event.Markets, m)
	return m
}

// outcomeByID returns the outcome with the given id, creating and appending
// it when absent.
func outcomeByID(market *models.Market, outcomeID, name string) *models.Outcome {
	for _, o := range market.Outcomes {
		if o.ID == outcomeID {
			return o
		}
	}
	o := &models.Outcome{
		ID:       outcomeID,
		MarketID: market.ID,
		Name:     name,
		Status:   models.OutcomeActive,
	}
	market.Outcomes = append(market.Outcomes, o)
	return o
}
