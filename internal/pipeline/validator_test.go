package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOdds(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		expectOdds string
		reason     string
	}{
		{name: "valid decimal odds", raw: "2.35", expectOdds: "2.35"},
		{name: "valid with whitespace", raw: " 1.01 ", expectOdds: "1.01"},
		{name: "empty", raw: "", reason: ReasonNonNumeric},
		{name: "non numeric", raw: "evens", reason: ReasonNonNumeric},
		{name: "fractional notation rejected", raw: "5/2", reason: ReasonNonNumeric},
		{name: "exactly evens rejected", raw: "1.0", reason: ReasonSubEvens},
		{name: "below evens rejected", raw: "0.85", reason: ReasonSubEvens},
		{name: "negative rejected", raw: "-2.5", reason: ReasonSubEvens},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			odds, reason, err := ParseOdds(tt.raw)
			if tt.reason != "" {
				require.Error(t, err)
				assert.Equal(t, tt.reason, reason)
				return
			}
			require.NoError(t, err)
			expected, _ := decimal.NewFromString(tt.expectOdds)
			assert.True(t, odds.Equal(expected))
		})
	}
}

func TestParseOddsFloat(t *testing.T) {
	odds, _, err := ParseOddsFloat(3.4)
	require.NoError(t, err)
	assert.True(t, odds.Equal(decimal.NewFromFloat(3.4)))

	_, reason, err := ParseOddsFloat(1.0)
	require.Error(t, err)
	assert.Equal(t, ReasonSubEvens, reason)
}

func TestBuildIdentityStableAcrossProviders(t *testing.T) {
	start := time.Date(2026, 8, 25, 19, 30, 0, 0, time.UTC)

	// Two providers reporting the same match with cosmetic name differences
	// must produce identical ids.
	m1, o1, err := BuildIdentity("Arsenal", "Chelsea", start, "Match Winner", "Home")
	require.NoError(t, err)
	m2, o2, err := BuildIdentity(" arsenal ", "CHELSEA", start.Add(20*time.Minute), "Match  Winner", "Home")
	require.NoError(t, err)

	assert.Equal(t, m1, m2)
	assert.Equal(t, o1, o2)
}

func TestBuildIdentityDifferentOutcomesDiffer(t *testing.T) {
	start := time.Date(2026, 8, 25, 19, 30, 0, 0, time.UTC)

	_, home, err := BuildIdentity("Arsenal", "Chelsea", start, "Match Winner", "Home")
	require.NoError(t, err)
	_, away, err := BuildIdentity("Arsenal", "Chelsea", start, "Match Winner", "Away")
	require.NoError(t, err)

	assert.NotEqual(t, home, away)
}

func TestBuildIdentityMissingComponents(t *testing.T) {
	start := time.Now()

	_, _, err := BuildIdentity("", "Chelsea", start, "Match Winner", "Home")
	assert.Error(t, err)

	_, _, err = BuildIdentity("Arsenal", "Chelsea", start, "", "Home")
	assert.Error(t, err)

	_, _, err = BuildIdentity("Arsenal", "Chelsea", start, "Match Winner", " ")
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"Match Winner", "match-winner"},
		{"Over/Under 2.5", "over-under-2-5"},
		{"  Total  Points  ", "total-points"},
		{"HOME", "home"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.out, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}
