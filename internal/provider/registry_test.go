package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/oddsmesh/internal/models"
)

type fakeAdapter struct {
	state
}

func newFakeAdapter(id string, weight int, enabled bool) *fakeAdapter {
	return &fakeAdapter{state: newState(id, "Fake "+id, weight, enabled)}
}

func (f *fakeAdapter) FetchOdds(ctx context.Context) (*models.ProviderFeed, error) {
	return models.EmptyFeed(f.ID()), nil
}

func TestRegistryAddAndLookup(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(newFakeAdapter("a", 80, true))
	r.Add(newFakeAdapter("b", 60, false))

	adapter, found := r.Get("a")
	require.True(t, found)
	assert.Equal(t, "a", adapter.ID())

	_, found = r.Get("missing")
	assert.False(t, found)

	infos := r.Providers()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].ID)
	assert.Equal(t, 80, infos[0].Weight)
}

func TestRegistryDuplicateAddIsNoOp(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(newFakeAdapter("a", 80, true))
	r.Add(newFakeAdapter("a", 10, false))

	adapter, found := r.Get("a")
	require.True(t, found)
	assert.Equal(t, 80, adapter.Weight(), "second registration with the same id must be ignored")
	assert.Len(t, r.Providers(), 1)
}

func TestRegistryToggle(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(newFakeAdapter("a", 80, true))

	// No explicit state inverts.
	state, found := r.Toggle("a", nil)
	require.True(t, found)
	assert.False(t, state)

	// Explicit state is idempotent.
	off := false
	state, found = r.Toggle("a", &off)
	require.True(t, found)
	assert.False(t, state)

	on := true
	state, found = r.Toggle("a", &on)
	require.True(t, found)
	assert.True(t, state)
}

func TestRegistryToggleUnknownProvider(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(newFakeAdapter("a", 80, true))

	_, found := r.Toggle("nope", nil)
	assert.False(t, found)

	// Existing providers are untouched.
	adapter, _ := r.Get("a")
	assert.True(t, adapter.IsEnabled())
}

func TestRegistrySetWeight(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(newFakeAdapter("a", 80, true))

	assert.True(t, r.SetWeight("a", 25))
	adapter, _ := r.Get("a")
	assert.Equal(t, 25, adapter.Weight())

	assert.False(t, r.SetWeight("nope", 25))
}

func TestRegistryWeightClamped(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(newFakeAdapter("a", 80, true))

	r.SetWeight("a", 500)
	adapter, _ := r.Get("a")
	assert.Equal(t, 100, adapter.Weight())

	r.SetWeight("a", -5)
	assert.Equal(t, 0, adapter.Weight())
}

func TestRegistryEnabledSnapshot(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(newFakeAdapter("a", 80, true))
	r.Add(newFakeAdapter("b", 60, false))
	r.Add(newFakeAdapter("c", 40, true))

	enabled := r.Enabled()
	require.Len(t, enabled, 2)

	ids := r.EnabledIDs()
	assert.True(t, ids["a"])
	assert.False(t, ids["b"])
	assert.True(t, ids["c"])

	weights := r.Weights()
	assert.Equal(t, map[string]int{"a": 80, "b": 60, "c": 40}, weights)
}
