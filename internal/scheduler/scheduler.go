// Package scheduler drives the periodic aggregation pass: fetch from every
// enabled provider in parallel, merge, and atomically publish the new
// snapshot.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/aggregate"
	"github.com/yourusername/oddsmesh/internal/metrics"
	"github.com/yourusername/oddsmesh/internal/models"
	"github.com/yourusername/oddsmesh/internal/provider"
)

// ErrPassInProgress is returned when a tick fires while the previous pass is
// still in flight; the tick is skipped, not queued.
var ErrPassInProgress = errors.New("aggregation pass already in progress")

// PassSummary records the outcome of one aggregation pass for observability.
type PassSummary struct {
	PassID            uuid.UUID     `json:"pass_id"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration"`
	Providers         int           `json:"providers"`
	FailedProviders   int           `json:"failed_providers"`
	FailedProviderIDs []string      `json:"failed_provider_ids,omitempty"`
	QuotesSeen        int           `json:"quotes_seen"`
	QuotesUsed        int           `json:"quotes_used"`
	Events            int           `json:"events"`
	Outcomes          int           `json:"outcomes"`
	RetainedOutcomes  int           `json:"retained_outcomes"`
	Exhausted         bool          `json:"exhausted"`
}

// Broadcaster pushes pass summaries to interested listeners (the websocket
// hub in production). A nil broadcaster is valid.
type Broadcaster interface {
	BroadcastSummary(summary *PassSummary)
}

// Scheduler owns the refresh timer and the pass workflow.
type Scheduler struct {
	cron        *cron.Cron
	registry    *provider.Registry
	aggregator  *aggregate.Aggregator
	holder      *aggregate.Holder
	interval    time.Duration
	broadcaster Broadcaster
	logger      *logrus.Entry

	mu          sync.Mutex
	inFlight    bool
	isRunning   bool
	lastRefresh time.Time
	lastSummary *PassSummary
}

// New creates a scheduler. interval is the fixed refresh cadence.
func New(registry *provider.Registry, aggregator *aggregate.Aggregator, holder *aggregate.Holder, interval time.Duration, broadcaster Broadcaster, logger *logrus.Entry) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		registry:    registry,
		aggregator:  aggregator,
		holder:      holder,
		interval:    interval,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Start begins the periodic refresh loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", int(s.interval.Seconds())), func() {
		if _, err := s.RunPass(context.Background()); err != nil && !errors.Is(err, ErrPassInProgress) {
			if s.logger != nil {
				s.logger.WithError(err).Error("Aggregation pass failed")
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	if s.logger != nil {
		s.logger.WithField("interval", s.interval.String()).Info("Refresh scheduler started")
	}
	return nil
}

// Stop gracefully stops the scheduler, waiting for an in-flight pass.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	if s.logger != nil {
		s.logger.Info("Refresh scheduler stopped")
	}
}

// IsRunning reports whether the refresh loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRefresh returns the completion time of the most recent pass.
func (s *Scheduler) LastRefresh() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefresh
}

// LastSummary returns the most recent pass summary.
func (s *Scheduler) LastSummary() *PassSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSummary
}

type fetchResult struct {
	adapter provider.Adapter
	feed    *models.ProviderFeed
	err     error
}

// RunPass executes one full aggregation pass: snapshot the enabled adapter
// list, fetch from all of them concurrently, merge, and publish. A failing
// adapter contributes zero quotes and never aborts the pass for the others.
func (s *Scheduler) RunPass(ctx context.Context) (*PassSummary, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		metrics.TicksSkippedTotal.Inc()
		if s.logger != nil {
			s.logger.Debug("Skipping tick: pass in progress")
		}
		return nil, ErrPassInProgress
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	started := time.Now()
	adapters := s.registry.Enabled()

	results := make([]fetchResult, len(adapters))
	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter provider.Adapter) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = fetchResult{
						adapter: adapter,
						feed:    models.EmptyFeed(adapter.ID()),
						err:     fmt.Errorf("adapter panicked: %v", r),
					}
				}
			}()

			fetchStart := time.Now()
			feed, err := adapter.FetchOdds(ctx)
			if feed == nil {
				feed = models.EmptyFeed(adapter.ID())
			}

			result := "success"
			if err != nil {
				result = "failure"
			}
			metrics.RecordProviderFetch(adapter.ID(), result, time.Since(fetchStart).Seconds())

			results[i] = fetchResult{adapter: adapter, feed: feed, err: err}
		}(i, adapter)
	}
	wg.Wait()

	summary := &PassSummary{
		PassID:    uuid.New(),
		StartedAt: started.UTC(),
		Providers: len(adapters),
	}

	feeds := make([]*models.ProviderFeed, 0, len(results))
	for _, res := range results {
		if res.err != nil {
			summary.FailedProviders++
			summary.FailedProviderIDs = append(summary.FailedProviderIDs, res.adapter.ID())
			if s.logger != nil {
				s.logger.WithError(res.err).WithField("provider", res.adapter.ID()).Warn("Provider fetch failed")
			}
		}
		feeds = append(feeds, res.feed)
	}

	// Total provider exhaustion: leave the current snapshot untouched.
	if len(adapters) > 0 && summary.FailedProviders == len(adapters) {
		summary.Exhausted = true
		summary.Duration = time.Since(started)
		metrics.PassesExhaustedTotal.Inc()
		s.finishPass(summary)
		if s.logger != nil {
			s.logger.WithField("providers", len(adapters)).Warn("All providers failed; keeping previous snapshot")
		}
		return summary, nil
	}

	prev := s.holder.Current()
	snapshot, stats := s.aggregator.BuildSnapshot(prev, feeds, s.registry.Weights(), s.registry.EnabledIDs())
	snapshot.PassID = summary.PassID
	s.holder.Swap(snapshot)

	summary.Duration = time.Since(started)
	summary.QuotesSeen = stats.QuotesSeen
	summary.QuotesUsed = stats.QuotesUsed
	summary.Events = stats.Events
	summary.Outcomes = stats.Outcomes
	summary.RetainedOutcomes = stats.RetainedOutcomes

	metrics.PassesTotal.Inc()
	if summary.FailedProviders > 0 {
		metrics.PassesPartialTotal.Inc()
	}
	metrics.PassDuration.Observe(summary.Duration.Seconds())
	metrics.SnapshotEvents.Set(float64(stats.Events))
	metrics.SnapshotOutcomes.Set(float64(stats.Outcomes))
	metrics.LastRefreshTimestamp.Set(float64(time.Now().Unix()))

	s.finishPass(summary)

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"pass_id":          summary.PassID,
			"duration":         summary.Duration.String(),
			"providers":        summary.Providers,
			"failed_providers": summary.FailedProviders,
			"events":           summary.Events,
			"quotes_used":      summary.QuotesUsed,
		}).Info("Aggregation pass completed")
	}

	return summary, nil
}

func (s *Scheduler) finishPass(summary *PassSummary) {
	s.mu.Lock()
	s.lastRefresh = time.Now().UTC()
	s.lastSummary = summary
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSummary(summary)
	}
}
