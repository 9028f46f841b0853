// Package provider contains the upstream odds provider abstraction: the
// Adapter contract, the registry of configured adapters, and the concrete
// adapters for each supported upstream.
package provider

import (
	"context"
	"sync"

	"github.com/yourusername/oddsmesh/internal/models"
)

// Adapter wraps one upstream odds/event source. FetchOdds converts the
// upstream payload into a normalized ProviderFeed. Implementations must
// contain upstream failures: on any error they return their last cached feed
// if it is within the staleness ceiling, otherwise an empty feed, and only
// surface the error so callers can count the failure. One adapter's failure
// never affects another.
type Adapter interface {
	// FetchOdds retrieves and normalizes the provider's current odds.
	FetchOdds(ctx context.Context) (*models.ProviderFeed, error)

	// ID returns the unique provider id.
	ID() string

	// Name returns the human-readable provider name.
	Name() string

	// Weight returns the provider's merge weight (0-100).
	Weight() int

	// SetWeight sets the merge weight, clamped to [0, 100].
	SetWeight(weight int)

	// IsEnabled reports whether the provider participates in passes.
	IsEnabled() bool

	// SetEnabled enables or disables the provider.
	SetEnabled(enabled bool)
}

// state holds the mutable identity shared by every adapter. Weight and
// enabled flag are toggled at runtime by the registry while passes read them
// concurrently.
type state struct {
	id      string
	name    string
	mu      sync.RWMutex
	weight  int
	enabled bool
}

func newState(id, name string, weight int, enabled bool) state {
	return state{
		id:      id,
		name:    name,
		weight:  clampWeight(weight),
		enabled: enabled,
	}
}

func (s *state) ID() string {
	return s.id
}

func (s *state) Name() string {
	return s.name
}

func (s *state) Weight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weight
}

func (s *state) SetWeight(weight int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weight = clampWeight(weight)
}

func (s *state) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

func (s *state) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// Info returns the registry snapshot view of the adapter.
func (s *state) Info() models.ProviderInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ProviderInfo{
		ID:      s.id,
		Name:    s.name,
		Weight:  s.weight,
		Enabled: s.enabled,
	}
}

func clampWeight(w int) int {
	if w < 0 {
		return 0
	}
	if w > 100 {
		return 100
	}
	return w
}
