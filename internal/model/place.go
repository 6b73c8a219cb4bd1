// Package model defines the records DishTip consumes from its collaborators:
// places from the location search, restaurant enrichment and dish
// recommendations from the backend.
//
// All three are immutable once received. Wire shapes live in wire.go and are
// converted at the boundary (convert.go); nothing past the backend client
// sees a DTO.
package model

// Place is a single physical location returned by the location search.
type Place struct {
	ID               string   // opaque place id, unique per location
	DisplayName      string   // e.g. "Cafe Einstein Stammhaus"
	FormattedAddress string   // may be empty
	Types            []string // e.g. ["restaurant", "cafe"]
}

// Valid reports whether the place carries a usable identifier.
// Selecting a place without one is a no-op.
func (p Place) Valid() bool {
	return p.ID != ""
}

// RestaurantInfo supplements a Place for display. Absence is "no
// enrichment", never an error.
type RestaurantInfo struct {
	Name       string
	Address    string
	WebsiteURL string // optional
	MapsURL    string // optional
}

// Dish is one recommended menu item with its provenance.
type Dish struct {
	Name       string
	Author     string   // optional
	Source     string   // optional
	ReviewLink string   // optional
	Timestamp  *float64 // seconds or milliseconds since epoch, see reltime
	Ranking    *float64 // optional
}

// Display fallbacks used by the views when provenance is missing.
const (
	AnonymousAuthor = "Anonymous"
	UnknownSource   = "unknown"
)

// AuthorOrDefault returns the author or AnonymousAuthor.
func (d Dish) AuthorOrDefault() string {
	if d.Author == "" {
		return AnonymousAuthor
	}
	return d.Author
}

// SourceOrDefault returns the source or UnknownSource.
func (d Dish) SourceOrDefault() string {
	if d.Source == "" {
		return UnknownSource
	}
	return d.Source
}
