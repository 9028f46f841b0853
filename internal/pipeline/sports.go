package pipeline

import (
	"strings"

	"github.com/yourusername/oddsmesh/internal/models"
)

// sportKeyMap maps explicit provider sport identifiers to catalog ids.
var sportKeyMap = map[string]int{
	"soccer":     models.SportFootball,
	"football":   models.SportFootball,
	"basketball": models.SportBasketball,
	"tennis":     models.SportTennis,
	"baseball":   models.SportBaseball,
	"icehockey":  models.SportIceHockey,
	"hockey":     models.SportIceHockey,
	"mma":        models.SportMMA,
}

// leagueKeywords maps league-name fragments to catalog ids. Checked in order
// of insertion via the slice below so classification stays deterministic.
var leagueKeywords = []struct {
	fragment string
	sportID  int
}{
	{"premier league", models.SportFootball},
	{"la liga", models.SportFootball},
	{"serie a", models.SportFootball},
	{"bundesliga", models.SportFootball},
	{"ligue 1", models.SportFootball},
	{"champions league", models.SportFootball},
	{"mls", models.SportFootball},
	{"nba", models.SportBasketball},
	{"euroleague", models.SportBasketball},
	{"wnba", models.SportBasketball},
	{"atp", models.SportTennis},
	{"wta", models.SportTennis},
	{"grand slam", models.SportTennis},
	{"mlb", models.SportBaseball},
	{"npb", models.SportBaseball},
	{"nhl", models.SportIceHockey},
	{"khl", models.SportIceHockey},
	{"ufc", models.SportMMA},
	{"bellator", models.SportMMA},
}

// footballTeamMarkers are name fragments that, when present in both
// participant names, confidently indicate a football club fixture.
var footballTeamMarkers = []string{"fc", "united", "city", "athletic", "real", "sporting"}

// ClassifySport resolves a sport id for a raw record. An explicit provider
// sport key wins; otherwise a deterministic keyword heuristic runs against
// the league and participant names. When nothing matches confidently the
// record is classified as unknown rather than guessed.
func ClassifySport(explicitKey, league, home, away string) int {
	if explicitKey != "" {
		key := strings.ToLower(explicitKey)
		// Provider keys are often compound, e.g. "soccer_epl" or
		// "basketball_nba"; match on the leading segment.
		for prefix, id := range sportKeyMap {
			if key == prefix || strings.HasPrefix(key, prefix+"_") {
				return id
			}
		}
	}

	lowerLeague := strings.ToLower(league)
	for _, kw := range leagueKeywords {
		if strings.Contains(lowerLeague, kw.fragment) {
			return kw.sportID
		}
	}

	if hasFootballMarker(home) && hasFootballMarker(away) {
		return models.SportFootball
	}

	return models.SportUnknown
}

func hasFootballMarker(team string) bool {
	words := strings.Fields(strings.ToLower(team))
	for _, w := range words {
		for _, marker := range footballTeamMarkers {
			if w == marker {
				return true
			}
		}
	}
	return false
}
