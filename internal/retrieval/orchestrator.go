// Package retrieval sequences the backend calls for one place selection.
//
// The two calls are independent: restaurant info is best-effort enrichment,
// recommendations decide the outcome. The UI issues them as separate
// commands; Retrieve runs both at once for callers that want a single
// result.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/dishtip/internal/model"
	"github.com/abelbrown/dishtip/internal/otel"
)

// Fetcher is the backend surface the orchestrator needs.
// *backend.Client satisfies it.
type Fetcher interface {
	RestaurantInfo(ctx context.Context, placeID string) (*model.RestaurantInfo, error)
	Recommendations(ctx context.Context, placeID string) ([]model.Dish, error)
}

// Result is the unified outcome of one retrieval, tagged with the session
// token it was issued for.
type Result struct {
	Token   string
	PlaceID string
	Info    *model.RestaurantInfo // nil when absent or when the info call failed
	InfoErr error                 // informational only
	Dishes  []model.Dish          // never nil on success
	Err     error                 // recommendation failure; drives the Failed phase
	Dur     time.Duration
}

// OK reports whether recommendations were retrieved.
func (r Result) OK() bool {
	return r.Err == nil
}

// Orchestrator issues the retrieval calls and records them as events.
type Orchestrator struct {
	fetcher Fetcher
	events  *otel.Logger
}

// New creates an Orchestrator. A nil events logger discards events.
func New(f Fetcher, events *otel.Logger) *Orchestrator {
	if events == nil {
		events = otel.NewNullLogger()
	}
	return &Orchestrator{fetcher: f, events: events}
}

// FetchInfo fetches enrichment for placeID. Errors are returned for the
// caller to log; they must never fail the session.
func (o *Orchestrator) FetchInfo(ctx context.Context, token, placeID string) (*model.RestaurantInfo, error) {
	start := time.Now()
	info, err := o.fetcher.RestaurantInfo(ctx, placeID)
	if err != nil {
		o.emitFailure(otel.LevelWarn, otel.KindInfoError, token, placeID, start, err)
		return nil, fmt.Errorf("restaurant info %s: %w", placeID, err)
	}

	o.events.Emit(otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindInfoComplete, Comp: "retrieval",
		SID: token, PlaceID: placeID, Dur: time.Since(start),
		Msg: infoSummary(info),
	})
	return info, nil
}

// FetchRecommendations fetches the dish list for placeID in backend order.
// A successful call always returns a non-nil slice.
func (o *Orchestrator) FetchRecommendations(ctx context.Context, token, placeID string) ([]model.Dish, error) {
	start := time.Now()
	o.events.Emit(otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindRetrievalStart, Comp: "retrieval",
		SID: token, PlaceID: placeID,
	})

	dishes, err := o.fetcher.Recommendations(ctx, placeID)
	if err != nil {
		o.emitFailure(otel.LevelError, otel.KindRetrievalError, token, placeID, start, err)
		return nil, fmt.Errorf("recommendations %s: %w", placeID, err)
	}
	if dishes == nil {
		dishes = []model.Dish{}
	}

	o.events.Emit(otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindRetrievalComplete, Comp: "retrieval",
		SID: token, PlaceID: placeID, Dur: time.Since(start), Count: len(dishes),
	})
	return dishes, nil
}

// Retrieve runs both calls concurrently and merges them. An info failure
// degrades to nil info; only a recommendations failure sets Result.Err.
func (o *Orchestrator) Retrieve(ctx context.Context, token, placeID string) Result {
	start := time.Now()
	res := Result{Token: token, PlaceID: placeID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Info errors stay local so they cannot cancel the recommendations call.
		res.Info, res.InfoErr = o.FetchInfo(gctx, token, placeID)
		return nil
	})
	g.Go(func() error {
		var err error
		res.Dishes, err = o.FetchRecommendations(gctx, token, placeID)
		return err
	})
	res.Err = g.Wait()
	if res.Err != nil {
		res.Dishes = nil
	}
	res.Dur = time.Since(start)
	return res
}

// emitFailure records a failed call. Requests cancelled because the
// selection was superseded are not errors.
func (o *Orchestrator) emitFailure(level otel.Level, kind otel.EventKind, token, placeID string, start time.Time, err error) {
	if errors.Is(err, context.Canceled) {
		level, kind = otel.LevelDebug, otel.KindRetrievalCancel
	}
	o.events.Emit(otel.Event{
		Level: level, Kind: kind, Comp: "retrieval",
		SID: token, PlaceID: placeID, Dur: time.Since(start), Err: err.Error(),
	})
}

func infoSummary(info *model.RestaurantInfo) string {
	if info == nil {
		return "none"
	}
	return info.Name
}
