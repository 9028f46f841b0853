package aggregate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/oddsmesh/internal/models"
)

func TestHolderSwapIsAtomicUnderConcurrentReads(t *testing.T) {
	agg := NewAggregator(models.DefaultSportCatalog(), nil)
	holder := NewHolder(models.DefaultSportCatalog())

	weights := map[string]int{"a": 80}
	enabled := map[string]bool{"a": true}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Readers continuously walk whatever snapshot is current; every event
	// they see must carry its full market tree.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := holder.Current()
				for _, event := range snap.Events() {
					assert.NotEmpty(t, event.Markets)
					for _, market := range event.Markets {
						assert.NotEmpty(t, market.Outcomes)
					}
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		snap, _ := agg.BuildSnapshot(holder.Current(), []*models.ProviderFeed{makeFeed(t, "a", 2.0+float64(i)/100)}, weights, enabled)
		holder.Swap(snap)
	}

	close(stop)
	wg.Wait()

	assert.Equal(t, 1, holder.Current().EventCount())
}

func TestEmptySnapshotBeforeFirstPass(t *testing.T) {
	holder := NewHolder(models.DefaultSportCatalog())

	snap := holder.Current()
	require.NotNil(t, snap)
	assert.Equal(t, 0, snap.EventCount())
	assert.NotEmpty(t, snap.Sports)
	assert.Empty(t, snap.Events())
}
