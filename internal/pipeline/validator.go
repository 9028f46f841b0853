package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/oddsmesh/internal/models"
)

// Rejection reasons recorded when a raw quote is dropped.
const (
	ReasonNonNumeric      = "non_numeric"
	ReasonSubEvens        = "sub_evens"
	ReasonMissingIdentity = "missing_identity"
)

// ParseOdds parses a raw decimal odds string. It rejects non-numeric input
// and anything at or below evens, so invalid values never reach the merge.
func ParseOdds(raw string) (decimal.Decimal, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, ReasonNonNumeric, fmt.Errorf("empty odds value")
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, ReasonNonNumeric, fmt.Errorf("unparseable odds %q: %w", raw, err)
	}

	return checkOddsRange(d)
}

// ParseOddsFloat validates a numeric odds value.
func ParseOddsFloat(raw float64) (decimal.Decimal, string, error) {
	return checkOddsRange(decimal.NewFromFloat(raw))
}

func checkOddsRange(d decimal.Decimal) (decimal.Decimal, string, error) {
	if d.LessThanOrEqual(models.MinOdds) {
		return decimal.Decimal{}, ReasonSubEvens, fmt.Errorf("odds %s not above 1.0", d)
	}
	return d, "", nil
}

// BuildIdentity constructs the canonical market and outcome ids for a raw
// record. Ids are derived from the cross-provider match key so the same
// logical outcome reported by two providers merges into one consensus value.
// It fails when any component needed for a deterministic id is missing.
func BuildIdentity(home, away string, start time.Time, marketName, outcomeName string) (marketID, outcomeID string, err error) {
	if strings.TrimSpace(home) == "" || strings.TrimSpace(away) == "" {
		return "", "", fmt.Errorf("missing participant names")
	}
	if strings.TrimSpace(marketName) == "" || strings.TrimSpace(outcomeName) == "" {
		return "", "", fmt.Errorf("missing market or outcome name")
	}

	key := models.MatchKey(home, away, start)
	marketID = key + "|" + Slugify(marketName)
	outcomeID = marketID + "|" + Slugify(outcomeName)
	return marketID, outcomeID, nil
}

// Slugify lowercases a name and collapses separators into hyphens so it can
// participate in identifiers.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
