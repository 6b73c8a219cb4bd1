// Package app builds the DishTip clients from configuration and adapts them
// to the commands the TUI issues.
package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/dishtip/internal/backend"
	"github.com/abelbrown/dishtip/internal/config"
	"github.com/abelbrown/dishtip/internal/otel"
	"github.com/abelbrown/dishtip/internal/places"
	"github.com/abelbrown/dishtip/internal/retrieval"
	"github.com/abelbrown/dishtip/internal/session"
	"github.com/abelbrown/dishtip/internal/ui"
)

// Deps holds the long-lived collaborators of one process.
type Deps struct {
	Config       *config.Config
	Backend      *backend.Client
	Places       *places.Client
	Orchestrator *retrieval.Orchestrator
	Events       *otel.Logger
}

// Build creates the clients described by cfg. A nil events logger discards
// events.
func Build(cfg *config.Config, events *otel.Logger) (*Deps, error) {
	if events == nil {
		events = otel.NewNullLogger()
	}

	bc, err := backend.New(backend.Options{
		BaseURL:         cfg.Backend.BaseURL,
		Timeout:         cfg.Backend.Timeout,
		RatePerSecond:   cfg.Backend.RatePerSecond,
		BreakerFailures: cfg.Backend.BreakerFailures,
		BreakerTimeout:  cfg.Backend.BreakerTimeout,
	})
	if err != nil {
		return nil, err
	}

	pc := places.New(places.Options{
		APIKey:        cfg.Places.APIKey,
		Region:        cfg.Places.Region,
		Endpoint:      cfg.Places.Endpoint,
		RatePerSecond: cfg.Places.RatePerSecond,
		CacheSize:     cfg.Places.CacheSize,
		CacheTTL:      cfg.Places.CacheTTL,
	})

	return &Deps{
		Config:       cfg,
		Backend:      bc,
		Places:       pc,
		Orchestrator: retrieval.New(bc, events),
		Events:       events,
	}, nil
}

// NewSession creates a session using the configured label vocabulary.
// rng may be nil.
func (d *Deps) NewSession(rng *rand.Rand) *session.Session {
	return session.New(session.Options{
		Vocabulary: d.Config.Vocabulary(),
		Rand:       rng,
	})
}

// UIConfig returns the TUI wiring. Without a Places API key autocomplete is
// disabled and the search box accepts raw place ids.
func (d *Deps) UIConfig(ring *otel.RingBuffer) ui.AppConfig {
	cfg := ui.AppConfig{
		FetchInfo:            d.fetchInfo,
		FetchRecommendations: d.fetchRecommendations,
		Session:              d.NewSession(nil),
		Events:               d.Events,
		Ring:                 ring,
		Debounce:             d.Config.Places.Debounce,
	}
	if d.Places.Enabled() {
		cfg.SearchPlaces = d.searchPlaces
	} else {
		cfg.RawPlaceIDs = true
	}
	return cfg
}

func (d *Deps) searchPlaces(ctx context.Context, query string, seq int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		found, err := d.Places.Autocomplete(ctx, query)
		if err != nil && !errors.Is(err, context.Canceled) {
			d.Events.Emit(otel.Event{
				Level: otel.LevelWarn, Kind: otel.KindPlacesError, Comp: "places",
				Query: query, Dur: time.Since(start), Err: err.Error(),
			})
		}
		return ui.PlacesLoaded{Query: query, Seq: seq, Places: found, Err: err}
	}
}

func (d *Deps) fetchInfo(ctx context.Context, tok session.Token, placeID string) tea.Cmd {
	return func() tea.Msg {
		info, err := d.Orchestrator.FetchInfo(ctx, string(tok), placeID)
		return ui.InfoLoaded{Token: tok, Info: info, Err: err}
	}
}

func (d *Deps) fetchRecommendations(ctx context.Context, tok session.Token, placeID string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		dishes, err := d.Orchestrator.FetchRecommendations(ctx, string(tok), placeID)
		return ui.RecommendationsLoaded{Token: tok, Dishes: dishes, Err: err, Dur: time.Since(start)}
	}
}
