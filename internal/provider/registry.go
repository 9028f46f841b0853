package provider

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/metrics"
	"github.com/yourusername/oddsmesh/internal/models"
)

// Registry holds the set of configured provider adapters. Adapters are added
// at startup and never removed; their weight and enabled flag are mutated at
// runtime. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters []Adapter
	byID     map[string]Adapter
	logger   *logrus.Entry
}

// NewRegistry creates an empty provider registry
func NewRegistry(logger *logrus.Entry) *Registry {
	return &Registry{
		adapters: make([]Adapter, 0),
		byID:     make(map[string]Adapter),
		logger:   logger,
	}
}

// Add registers an adapter. A duplicate id is a logged no-op.
func (r *Registry) Add(adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := adapter.ID()
	if _, exists := r.byID[id]; exists {
		if r.logger != nil {
			r.logger.WithField("provider", id).Warn("Ignoring duplicate provider registration")
		}
		return
	}

	r.byID[id] = adapter
	r.adapters = append(r.adapters, adapter)
	metrics.UpdateProviderState(id, adapter.Weight(), adapter.IsEnabled())

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"provider": id,
			"weight":   adapter.Weight(),
			"enabled":  adapter.IsEnabled(),
		}).Info("Provider registered")
	}
}

// Get returns the adapter with the given id
func (r *Registry) Get(id string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// Providers returns an id/name/enabled/weight snapshot for all registered
// adapters, in registration order.
func (r *Registry) Providers() []models.ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]models.ProviderInfo, 0, len(r.adapters))
	for _, a := range r.adapters {
		infos = append(infos, models.ProviderInfo{
			ID:      a.ID(),
			Name:    a.Name(),
			Weight:  a.Weight(),
			Enabled: a.IsEnabled(),
		})
	}
	return infos
}

// Enabled returns the adapters currently enabled. A pass started before a
// later toggle keeps using the slice it was handed.
func (r *Registry) Enabled() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		if a.IsEnabled() {
			enabled = append(enabled, a)
		}
	}
	return enabled
}

// Weights returns the current weight of every registered adapter keyed by id.
func (r *Registry) Weights() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	weights := make(map[string]int, len(r.adapters))
	for _, a := range r.adapters {
		weights[a.ID()] = a.Weight()
	}
	return weights
}

// EnabledIDs returns the set of enabled adapter ids.
func (r *Registry) EnabledIDs() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make(map[string]bool, len(r.adapters))
	for _, a := range r.adapters {
		if a.IsEnabled() {
			ids[a.ID()] = true
		}
	}
	return ids
}

// Toggle flips the enabled state of a provider, or sets it when enabled is
// non-nil. It returns the new state and whether the provider was found; an
// unknown id is a no-op.
func (r *Registry) Toggle(id string, enabled *bool) (bool, bool) {
	r.mu.RLock()
	adapter, ok := r.byID[id]
	r.mu.RUnlock()

	if !ok {
		if r.logger != nil {
			r.logger.WithField("provider", id).Warn("Toggle requested for unknown provider")
		}
		return false, false
	}

	newState := !adapter.IsEnabled()
	if enabled != nil {
		newState = *enabled
	}
	adapter.SetEnabled(newState)
	metrics.UpdateProviderState(id, adapter.Weight(), newState)

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"provider": id,
			"enabled":  newState,
		}).Info("Provider toggled")
	}
	return newState, true
}

// SetWeight updates a provider's merge weight, clamped to [0, 100]. It
// returns false for an unknown id.
func (r *Registry) SetWeight(id string, weight int) bool {
	r.mu.RLock()
	adapter, ok := r.byID[id]
	r.mu.RUnlock()

	if !ok {
		if r.logger != nil {
			r.logger.WithField("provider", id).Warn("Weight update requested for unknown provider")
		}
		return false
	}

	adapter.SetWeight(weight)
	metrics.UpdateProviderState(id, adapter.Weight(), adapter.IsEnabled())

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"provider": id,
			"weight":   adapter.Weight(),
		}).Info("Provider weight updated")
	}
	return true
}
