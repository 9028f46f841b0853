package models

// Sport represents a sport category in the canonical catalog
type Sport struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Active bool   `json:"active"`
}

// Well-known sport IDs used by the static catalog and the classifier.
const (
	SportUnknown    = 0
	SportFootball   = 1
	SportBasketball = 2
	SportTennis     = 3
	SportBaseball   = 4
	SportIceHockey  = 5
	SportMMA        = 6
)

// DefaultSportCatalog returns the static sport catalog created at startup.
// The catalog is immutable for the lifetime of the process.
func DefaultSportCatalog() []Sport {
	return []Sport{
		{ID: SportFootball, Name: "Football", Slug: "football", Active: true},
		{ID: SportBasketball, Name: "Basketball", Slug: "basketball", Active: true},
		{ID: SportTennis, Name: "Tennis", Slug: "tennis", Active: true},
		{ID: SportBaseball, Name: "Baseball", Slug: "baseball", Active: true},
		{ID: SportIceHockey, Name: "Ice Hockey", Slug: "ice-hockey", Active: true},
		{ID: SportMMA, Name: "MMA", Slug: "mma", Active: true},
		{ID: SportUnknown, Name: "Unknown", Slug: "unknown", Active: false},
	}
}

// SportBySlug looks up a sport in the catalog by its URL-safe slug.
func SportBySlug(catalog []Sport, slug string) (Sport, bool) {
	for _, s := range catalog {
		if s.Slug == slug {
			return s, true
		}
	}
	return Sport{}, false
}
