// Package service exposes read-only queries over the current snapshot.
package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/aggregate"
	"github.com/yourusername/oddsmesh/internal/models"
	"github.com/yourusername/oddsmesh/internal/provider"
	"github.com/yourusername/oddsmesh/internal/scheduler"
)

// Query answers all read requests from the published snapshot. It never
// blocks on a refresh pass; callers always get the last complete view.
type Query struct {
	holder   *aggregate.Holder
	registry *provider.Registry
	sched    *scheduler.Scheduler
	logger   *logrus.Entry
}

// NewQuery creates a query service.
func NewQuery(holder *aggregate.Holder, registry *provider.Registry, sched *scheduler.Scheduler, logger *logrus.Entry) *Query {
	return &Query{
		holder:   holder,
		registry: registry,
		sched:    sched,
		logger:   logger,
	}
}

// GetSports returns the sport catalog.
func (q *Query) GetSports() []models.Sport {
	return q.holder.Current().Sports
}

// GetEvents returns events in start-time order, optionally filtered by sport
// and live state. Nil filters match everything.
func (q *Query) GetEvents(sportID *int, isLive *bool) []*models.Event {
	snap := q.holder.Current()

	out := make([]*models.Event, 0, snap.EventCount())
	for _, event := range snap.Events() {
		if sportID != nil && event.SportID != *sportID {
			continue
		}
		if isLive != nil && event.IsLive() != *isLive {
			continue
		}
		out = append(out, event)
	}
	return out
}

// GetEventByID returns one event with its full market tree.
func (q *Query) GetEventByID(id string) (*models.Event, bool) {
	return q.holder.Current().EventByID(id)
}

// GetLiveEvents returns in-play events, optionally filtered by sport.
func (q *Query) GetLiveEvents(sportID *int) []*models.Event {
	live := true
	return q.GetEvents(sportID, &live)
}

// Providers returns the registry state for every registered provider.
func (q *Query) Providers() []models.ProviderInfo {
	return q.registry.Providers()
}

// Status is the operational summary served by the status endpoint.
type Status struct {
	SnapshotID       string                 `json:"snapshot_id"`
	GeneratedAt      time.Time              `json:"generated_at"`
	Events           int                    `json:"events"`
	Sports           int                    `json:"sports"`
	Providers        []models.ProviderInfo  `json:"providers"`
	LastRefresh      *time.Time             `json:"last_refresh,omitempty"`
	LastPass         *scheduler.PassSummary `json:"last_pass,omitempty"`
	SchedulerRunning bool                   `json:"scheduler_running"`
}

// GetStatus reports the current snapshot, provider, and scheduler state.
func (q *Query) GetStatus() Status {
	snap := q.holder.Current()

	status := Status{
		SnapshotID:  snap.PassID.String(),
		GeneratedAt: snap.GeneratedAt,
		Events:      snap.EventCount(),
		Sports:      len(snap.Sports),
		Providers:   q.registry.Providers(),
	}

	if q.sched != nil {
		status.SchedulerRunning = q.sched.IsRunning()
		if last := q.sched.LastRefresh(); !last.IsZero() {
			status.LastRefresh = &last
		}
		status.LastPass = q.sched.LastSummary()
	}

	return status
}
