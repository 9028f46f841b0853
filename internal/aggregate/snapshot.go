// Package aggregate merges per-provider odds quotes into consensus values
// and publishes the result as an immutable snapshot.
package aggregate

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/oddsmesh/internal/models"
)

// Snapshot is the fully-aggregated view of all canonical entities as of the
// end of one pass. A published snapshot is never mutated; readers can hold
// references across passes.
type Snapshot struct {
	PassID      uuid.UUID
	GeneratedAt time.Time
	Sports      []models.Sport
	events      map[string]*models.Event
	order       []string // event ids sorted by start time for stable listings
}

// NewEmptySnapshot returns a snapshot with no events, used before the first
// pass completes.
func NewEmptySnapshot(sports []models.Sport) *Snapshot {
	return &Snapshot{
		PassID:      uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Sports:      sports,
		events:      make(map[string]*models.Event),
		order:       []string{},
	}
}

// EventByID returns the event with the given id.
func (s *Snapshot) EventByID(id string) (*models.Event, bool) {
	e, ok := s.events[id]
	return e, ok
}

// Events returns all events in start-time order.
func (s *Snapshot) Events() []*models.Event {
	out := make([]*models.Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.events[id])
	}
	return out
}

// EventCount returns the number of events in the snapshot.
func (s *Snapshot) EventCount() int {
	return len(s.events)
}

// outcomeIndex builds a lookup of every outcome in the snapshot by id.
func (s *Snapshot) outcomeIndex() map[string]*models.Outcome {
	idx := make(map[string]*models.Outcome)
	for _, e := range s.events {
		for _, m := range e.Markets {
			for _, o := range m.Outcomes {
				idx[o.ID] = o
			}
		}
	}
	return idx
}

// Holder owns the externally visible snapshot pointer. The swap is the only
// externally observable ordering guarantee: readers always see either the
// prior complete snapshot or the new complete one.
type Holder struct {
	mu      sync.RWMutex
	current *Snapshot
}

// NewHolder creates a holder seeded with an empty snapshot.
func NewHolder(sports []models.Sport) *Holder {
	return &Holder{current: NewEmptySnapshot(sports)}
}

// Current returns the most recently published snapshot.
func (h *Holder) Current() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Swap publishes a new snapshot.
func (h *Holder) Swap(s *Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = s
}
