package provider

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/config"
	"github.com/yourusername/oddsmesh/internal/pipeline"
	"github.com/yourusername/oddsmesh/internal/store"
)

// Adapter kinds accepted in configuration
const (
	KindTheOddsAPI  = "theoddsapi"
	KindAPIFootball = "apifootball"
	KindStatic      = "static"
)

// Factory creates Adapter implementations from configuration.
type Factory struct {
	kv         store.Store
	normalizer *pipeline.Normalizer
	logger     *logrus.Entry
}

// NewFactory creates a new adapter factory.
func NewFactory(kv store.Store, normalizer *pipeline.Normalizer, logger *logrus.Entry) *Factory {
	return &Factory{
		kv:         kv,
		normalizer: normalizer,
		logger:     logger,
	}
}

// NewAdapter creates a single adapter from its configuration.
func (f *Factory) NewAdapter(cfg config.ProviderConfig) (Adapter, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	staleness := time.Duration(cfg.StalenessSeconds) * time.Second

	switch cfg.Kind {
	case KindTheOddsAPI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("provider %s: The Odds API key is required", cfg.ID)
		}
		return NewTheOddsAPIClient(TheOddsAPIOptions{
			ID:        cfg.ID,
			Name:      cfg.Name,
			Weight:    cfg.Weight,
			Enabled:   cfg.Enabled,
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Timeout:   timeout,
			Staleness: staleness,
			RateLimit: cfg.RateLimit,
		}, f.kv, f.normalizer, f.logger), nil

	case KindAPIFootball:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("provider %s: API-Football key is required", cfg.ID)
		}
		return NewAPIFootballClient(APIFootballOptions{
			ID:        cfg.ID,
			Name:      cfg.Name,
			Weight:    cfg.Weight,
			Enabled:   cfg.Enabled,
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Timeout:   timeout,
			Staleness: staleness,
			RateLimit: cfg.RateLimit,
		}, f.kv, f.normalizer, f.logger), nil

	case KindStatic:
		return NewStaticFallbackProvider(cfg.ID, cfg.Name, cfg.Weight, cfg.Enabled, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown provider kind: %s", cfg.Kind)
	}
}

// BuildRegistry creates all configured adapters and registers them.
func (f *Factory) BuildRegistry(cfgs []config.ProviderConfig) (*Registry, error) {
	registry := NewRegistry(f.logger)

	for _, cfg := range cfgs {
		adapter, err := f.NewAdapter(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %s: %w", cfg.ID, err)
		}
		registry.Add(adapter)
	}

	if len(registry.Providers()) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	return registry, nil
}
