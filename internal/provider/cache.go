package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/models"
	"github.com/yourusername/oddsmesh/internal/store"
)

// feedCache holds an adapter's last successful feed in the key-value store.
// It is distinct from the aggregator-level snapshot: it lets a single adapter
// ride out a transient upstream outage without degrading the whole pass.
type feedCache struct {
	store      store.Store
	providerID string
	staleness  time.Duration
	logger     *logrus.Entry
}

func newFeedCache(s store.Store, providerID string, staleness time.Duration, logger *logrus.Entry) *feedCache {
	return &feedCache{
		store:      s,
		providerID: providerID,
		staleness:  staleness,
		logger:     logger,
	}
}

func (c *feedCache) key() string {
	return "provider:" + c.providerID + ":feed"
}

// save stores the feed with the provider's staleness ceiling as TTL.
func (c *feedCache) save(ctx context.Context, feed *models.ProviderFeed) {
	data, err := json.Marshal(feed)
	if err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Warn("Failed to serialize feed for cache")
		}
		return
	}
	if err := c.store.Put(ctx, c.key(), data, c.staleness); err != nil && c.logger != nil {
		c.logger.WithError(err).Warn("Failed to cache feed")
	}
}

// load returns the last cached feed, or nil when absent, expired or
// unreadable. The store's TTL enforces the staleness ceiling.
func (c *feedCache) load(ctx context.Context) *models.ProviderFeed {
	data, found, err := c.store.Get(ctx, c.key())
	if err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Warn("Failed to read cached feed")
		}
		return nil
	}
	if !found {
		return nil
	}

	var feed models.ProviderFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Warn("Discarding unreadable cached feed")
		}
		_ = c.store.Delete(ctx, c.key())
		return nil
	}
	return &feed
}
