package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/oddsmesh/internal/models"
)

func TestClassifySport(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		league   string
		home     string
		away     string
		expected int
	}{
		{
			name:     "explicit compound key wins",
			key:      "soccer_epl",
			league:   "NBA",
			expected: models.SportFootball,
		},
		{
			name:     "explicit plain key",
			key:      "basketball",
			expected: models.SportBasketball,
		},
		{
			name:     "league keyword",
			league:   "Premier League",
			expected: models.SportFootball,
		},
		{
			name:     "league keyword case insensitive",
			league:   "nhl regular season",
			expected: models.SportIceHockey,
		},
		{
			name:     "mma promotion",
			league:   "UFC Fight Night",
			expected: models.SportMMA,
		},
		{
			name:     "football markers in both team names",
			home:     "Arsenal FC",
			away:     "Leeds United",
			expected: models.SportFootball,
		},
		{
			name:     "marker in one name only is not enough",
			home:     "Arsenal FC",
			away:     "Denver Nuggets",
			expected: models.SportUnknown,
		},
		{
			name:     "no signal stays unknown",
			league:   "Regional Cup",
			home:     "Alpha",
			away:     "Beta",
			expected: models.SportUnknown,
		},
		{
			name:     "unrecognized key falls through to league",
			key:      "cricket_t20",
			league:   "La Liga",
			expected: models.SportFootball,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySport(tt.key, tt.league, tt.home, tt.away))
		})
	}
}
