// Package ui provides the Bubble Tea TUI for DishTip.
package ui

import (
	"time"

	"github.com/abelbrown/dishtip/internal/model"
	"github.com/abelbrown/dishtip/internal/session"
)

// DebounceTick fires after the user stops typing. Seq is the input
// revision it was scheduled for; older ticks are ignored.
type DebounceTick struct {
	Seq int
}

// PlacesLoaded carries autocomplete suggestions for one input revision.
type PlacesLoaded struct {
	Query  string
	Seq    int // for stale-check
	Places []model.Place
	Err    error
}

// InfoLoaded carries restaurant enrichment for a selection.
type InfoLoaded struct {
	Token session.Token // for stale-check
	Info  *model.RestaurantInfo
	Err   error
}

// RecommendationsLoaded carries the dish list for a selection.
type RecommendationsLoaded struct {
	Token  session.Token // for stale-check
	Dishes []model.Dish
	Err    error
	Dur    time.Duration
}
