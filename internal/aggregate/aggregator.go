package aggregate

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/models"
)

// Aggregator computes consensus odds per outcome from the quotes collected
// in one pass and assembles the next snapshot.
type Aggregator struct {
	sports []models.Sport
	logger *logrus.Entry
}

// Stats summarizes one aggregation run for observability.
type Stats struct {
	Events           int
	Outcomes         int // outcomes carrying a consensus value
	QuotesSeen       int
	QuotesUsed       int
	RetainedOutcomes int // outcomes keeping their previous consensus
}

// NewAggregator creates a new aggregator over the given sport catalog.
func NewAggregator(sports []models.Sport, logger *logrus.Entry) *Aggregator {
	return &Aggregator{
		sports: sports,
		logger: logger,
	}
}

// carryWindow bounds how long an event unreported by every feed stays in the
// snapshot: four hours past kickoff it counts as finished and is dropped.
// Matches the pipeline's live-window heuristic.
const carryWindow = 4 * time.Hour

// BuildSnapshot merges the feeds collected in one pass into a new snapshot.
// prev supplies consensus values to retain for outcomes that received no
// usable quotes; unfinished events that no feed reports this pass (a disabled
// or failing provider was their only source) are carried forward whole.
// weights and enabled are the registry state sampled at merge time; quotes
// from disabled providers are discarded, and quotes from providers with no
// weight entry are never averaged.
func (a *Aggregator) BuildSnapshot(prev *Snapshot, feeds []*models.ProviderFeed, weights map[string]int, enabled map[string]bool) (*Snapshot, Stats) {
	var stats Stats

	events, byKey := a.mergeEvents(feeds)

	var prevOutcomes map[string]*models.Outcome
	if prev != nil {
		prevOutcomes = prev.outcomeIndex()
		adoptMissingOutcomes(byKey, prev)
		carryForwardEvents(prev, byKey, events, time.Now().UTC())
	} else {
		prevOutcomes = map[string]*models.Outcome{}
	}

	groups := a.groupQuotes(feeds, weights, enabled, &stats)

	order := eventOrder(events)
	for _, id := range order {
		event := events[id]
		for _, market := range event.Markets {
			for _, outcome := range market.Outcomes {
				a.mergeOutcome(outcome, groups[outcome.ID], weights, prevOutcomes[outcome.ID], &stats)
				if outcome.Odds != nil {
					stats.Outcomes++
				}
			}
		}
	}

	stats.Events = len(events)

	return &Snapshot{
		PassID:      uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Sports:      a.sports,
		events:      events,
		order:       order,
	}, stats
}

// mergeEvents unions the events reported by all feeds. Events from different
// providers describing the same real-world match (same normalized match key)
// collapse into one logical event; identity matching is heuristic and
// ambiguous duplicates are allowed to coexist under their own ids.
func (a *Aggregator) mergeEvents(feeds []*models.ProviderFeed) (byID, byKey map[string]*models.Event) {
	byKey = make(map[string]*models.Event)
	byID = make(map[string]*models.Event)

	for _, feed := range feeds {
		for _, event := range feed.Events {
			key := event.MatchKey()
			existing, ok := byKey[key]
			if !ok {
				byKey[key] = event
				byID[event.ID] = event
				continue
			}
			mergeEventMetadata(existing, event)
		}
	}

	return byID, byKey
}

// eventOrder sorts event ids by start time for stable listings.
func eventOrder(events map[string]*models.Event) []string {
	order := make([]string, 0, len(events))
	for id := range events {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		ei, ej := events[order[i]], events[order[j]]
		if !ei.StartTime.Equal(ej.StartTime) {
			return ei.StartTime.Before(ej.StartTime)
		}
		return ei.ID < ej.ID
	})
	return order
}

// adoptMissingOutcomes grafts markets and outcomes from the previous snapshot
// onto events that are reported this pass but no longer list them, so an
// outcome a provider stopped quoting keeps its consensus instead of vanishing.
// Grafted copies start without odds; the retention path restores them.
func adoptMissingOutcomes(byKey map[string]*models.Event, prev *Snapshot) {
	for _, prevEvent := range prev.events {
		dst, ok := byKey[prevEvent.MatchKey()]
		if !ok {
			continue
		}
		for _, prevMarket := range prevEvent.Markets {
			dstMarket := findMarket(dst, prevMarket.ID)
			if dstMarket == nil {
				graft := cloneMarket(prevMarket)
				graft.EventID = dst.ID
				clearConsensus(graft)
				dst.Markets = append(dst.Markets, graft)
				continue
			}
			for _, prevOutcome := range prevMarket.Outcomes {
				if findOutcome(dstMarket, prevOutcome.ID) == nil {
					graft := *prevOutcome
					graft.Odds = nil
					graft.Providers = 0
					dstMarket.Outcomes = append(dstMarket.Outcomes, &graft)
				}
			}
		}
	}
}

// carryForwardEvents copies previous-snapshot events whose match key no feed
// reported this pass into the new event set. Finished events are not carried;
// neither is anything past the carry window. The copies start without odds so
// every retained value flows through the same retention path and counts once.
func carryForwardEvents(prev *Snapshot, byKey, byID map[string]*models.Event, now time.Time) {
	for _, prevEvent := range prev.events {
		key := prevEvent.MatchKey()
		if _, reported := byKey[key]; reported {
			continue
		}
		if prevEvent.Status == models.EventFinished || !now.Before(prevEvent.StartTime.Add(carryWindow)) {
			continue
		}

		carried := cloneEvent(prevEvent)
		if carried.Status == models.EventUpcoming && !now.Before(carried.StartTime) {
			carried.Status = models.EventLive
		}
		for _, market := range carried.Markets {
			clearConsensus(market)
		}

		byKey[key] = carried
		byID[carried.ID] = carried
	}
}

func cloneEvent(e *models.Event) *models.Event {
	cp := *e
	cp.Markets = make([]*models.Market, len(e.Markets))
	for i, m := range e.Markets {
		cp.Markets[i] = cloneMarket(m)
	}
	return &cp
}

func cloneMarket(m *models.Market) *models.Market {
	cp := *m
	cp.Outcomes = make([]*models.Outcome, len(m.Outcomes))
	for i, o := range m.Outcomes {
		oc := *o
		cp.Outcomes[i] = &oc
	}
	return &cp
}

func clearConsensus(m *models.Market) {
	for _, o := range m.Outcomes {
		o.Odds = nil
		o.Providers = 0
	}
}

// mergeEventMetadata folds a duplicate report of the same logical event into
// the canonical record: the first reporter wins for optional metadata,
// markets and outcomes are unioned by id, and lifecycle status upgrades
// forward only (upcoming -> live -> finished).
func mergeEventMetadata(dst, src *models.Event) {
	if dst.Venue == nil && src.Venue != nil {
		dst.Venue = src.Venue
	}
	if dst.League == "" {
		dst.League = src.League
	}
	if dst.SportID == models.SportUnknown && src.SportID != models.SportUnknown {
		dst.SportID = src.SportID
	}
	if statusRank(src.Status) > statusRank(dst.Status) {
		dst.Status = src.Status
	}

	for _, srcMarket := range src.Markets {
		dstMarket := findMarket(dst, srcMarket.ID)
		if dstMarket == nil {
			srcMarket.EventID = dst.ID
			dst.Markets = append(dst.Markets, srcMarket)
			continue
		}
		for _, srcOutcome := range srcMarket.Outcomes {
			if findOutcome(dstMarket, srcOutcome.ID) == nil {
				dstMarket.Outcomes = append(dstMarket.Outcomes, srcOutcome)
			}
		}
	}
}

func statusRank(s models.EventStatus) int {
	switch s {
	case models.EventLive:
		return 1
	case models.EventFinished:
		return 2
	default:
		return 0
	}
}

func findMarket(e *models.Event, id string) *models.Market {
	for _, m := range e.Markets {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func findOutcome(m *models.Market, id string) *models.Outcome {
	for _, o := range m.Outcomes {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// groupQuotes buckets usable quotes by outcome id. Quotes from disabled
// providers are discarded here, and at most one quote per provider counts
// toward an outcome (the last one reported).
func (a *Aggregator) groupQuotes(feeds []*models.ProviderFeed, weights map[string]int, enabled map[string]bool, stats *Stats) map[string][]models.OddsQuote {
	perProvider := make(map[string]map[string]models.OddsQuote)

	for _, feed := range feeds {
		for _, quote := range feed.Quotes {
			stats.QuotesSeen++

			if !enabled[quote.ProviderID] {
				continue
			}
			if _, known := weights[quote.ProviderID]; !known {
				if a.logger != nil {
					a.logger.WithField("provider", quote.ProviderID).Warn("Discarding quote from unattributable provider")
				}
				continue
			}

			byProvider, ok := perProvider[quote.OutcomeID]
			if !ok {
				byProvider = make(map[string]models.OddsQuote)
				perProvider[quote.OutcomeID] = byProvider
			}
			byProvider[quote.ProviderID] = quote
		}
	}

	groups := make(map[string][]models.OddsQuote, len(perProvider))
	for outcomeID, byProvider := range perProvider {
		quotes := make([]models.OddsQuote, 0, len(byProvider))
		for _, q := range byProvider {
			quotes = append(quotes, q)
		}
		sort.Slice(quotes, func(i, j int) bool { return quotes[i].ProviderID < quotes[j].ProviderID })
		groups[outcomeID] = quotes
		stats.QuotesUsed += len(quotes)
	}
	return groups
}

// mergeOutcome writes the consensus value for one outcome. With no usable
// quotes, or a zero weight sum, the previous pass's consensus is carried
// forward untouched. A single contributing quote passes through regardless
// of its provider's weight.
func (a *Aggregator) mergeOutcome(outcome *models.Outcome, quotes []models.OddsQuote, weights map[string]int, prev *models.Outcome, stats *Stats) {
	if len(quotes) == 0 {
		retainPrevious(outcome, prev, stats)
		return
	}

	weightSum := 0
	for _, q := range quotes {
		weightSum += weights[q.ProviderID]
	}

	if weightSum == 0 {
		retainPrevious(outcome, prev, stats)
		return
	}

	var consensus decimal.Decimal
	if len(quotes) == 1 {
		consensus = quotes[0].Odds
	} else {
		sum := decimal.Zero
		for _, q := range quotes {
			sum = sum.Add(q.Odds.Mul(decimal.NewFromInt(int64(weights[q.ProviderID]))))
		}
		consensus = sum.Div(decimal.NewFromInt(int64(weightSum)))
	}

	outcome.Odds = &consensus
	outcome.Providers = len(quotes)
}

func retainPrevious(outcome *models.Outcome, prev *models.Outcome, stats *Stats) {
	if outcomeSettled(outcome) {
		return
	}
	if prev == nil || prev.Odds == nil {
		return
	}
	outcome.Odds = prev.Odds
	outcome.Providers = prev.Providers
	stats.RetainedOutcomes++
}

// outcomeSettled reports whether a selection has left the wagerable state;
// settled selections never inherit a previous consensus.
func outcomeSettled(o *models.Outcome) bool {
	switch o.Status {
	case models.OutcomeInactive, models.OutcomeWinner, models.OutcomeLoser:
		return true
	default:
		return false
	}
}
