package retrieval

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/dishtip/internal/model"
	"github.com/abelbrown/dishtip/internal/otel"
)

type fakeFetcher struct {
	info      *model.RestaurantInfo
	infoErr   error
	dishes    []model.Dish
	dishesErr error
	infoDelay time.Duration

	infoCalls atomic.Int32
	recCalls  atomic.Int32
}

func (f *fakeFetcher) RestaurantInfo(ctx context.Context, placeID string) (*model.RestaurantInfo, error) {
	f.infoCalls.Add(1)
	if f.infoDelay > 0 {
		select {
		case <-time.After(f.infoDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.info, f.infoErr
}

func (f *fakeFetcher) Recommendations(ctx context.Context, placeID string) ([]model.Dish, error) {
	f.recCalls.Add(1)
	return f.dishes, f.dishesErr
}

func newTestOrchestrator(f Fetcher) (*Orchestrator, *otel.RingBuffer, *otel.Logger) {
	events := otel.NewNullLogger()
	rb := otel.NewRingBuffer(64)
	events.SetRingBuffer(rb)
	return New(f, events), rb, events
}

func TestRetrieveSuccess(t *testing.T) {
	f := &fakeFetcher{
		info:   &model.RestaurantInfo{Name: "Ramen Bar", Address: "Kantstr. 1"},
		dishes: []model.Dish{{Name: "Ramen"}},
	}
	o, rb, events := newTestOrchestrator(f)

	res := o.Retrieve(context.Background(), "tok", "abc123")
	events.Close()

	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Token != "tok" || res.PlaceID != "abc123" {
		t.Errorf("result not tagged: %+v", res)
	}
	if res.Info == nil || res.Info.Name != "Ramen Bar" {
		t.Errorf("info = %+v", res.Info)
	}
	if len(res.Dishes) != 1 || res.Dishes[0].Name != "Ramen" {
		t.Errorf("dishes = %+v", res.Dishes)
	}
	if f.infoCalls.Load() != 1 || f.recCalls.Load() != 1 {
		t.Errorf("calls: info=%d rec=%d, want 1 each", f.infoCalls.Load(), f.recCalls.Load())
	}

	kinds := map[otel.EventKind]bool{}
	for _, e := range rb.Session("tok") {
		kinds[e.Kind] = true
	}
	for _, k := range []otel.EventKind{otel.KindRetrievalStart, otel.KindRetrievalComplete, otel.KindInfoComplete} {
		if !kinds[k] {
			t.Errorf("missing event %s", k)
		}
	}
}

func TestRetrieveEmptyIsSuccess(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeFetcher{})

	res := o.Retrieve(context.Background(), "tok", "p")
	if !res.OK() {
		t.Fatalf("empty list must not be an error: %v", res.Err)
	}
	if res.Dishes == nil || len(res.Dishes) != 0 {
		t.Errorf("dishes = %#v, want empty non-nil", res.Dishes)
	}
}

func TestRetrieveInfoFailureDegrades(t *testing.T) {
	f := &fakeFetcher{
		infoErr: errors.New("HTTP 500"),
		dishes:  []model.Dish{{Name: "Ramen"}},
	}
	o, _, _ := newTestOrchestrator(f)

	res := o.Retrieve(context.Background(), "tok", "p")
	if !res.OK() {
		t.Fatalf("info failure must not fail retrieval: %v", res.Err)
	}
	if res.Info != nil {
		t.Errorf("info = %+v, want nil", res.Info)
	}
	if res.InfoErr == nil {
		t.Error("InfoErr should record the failure")
	}
	if len(res.Dishes) != 1 {
		t.Errorf("dishes = %+v", res.Dishes)
	}
}

func TestRetrieveRecommendationsFailure(t *testing.T) {
	cause := errors.New("connection refused")
	f := &fakeFetcher{
		info:      &model.RestaurantInfo{Name: "Ramen Bar"},
		dishesErr: cause,
		infoDelay: time.Second,
	}
	o, rb, events := newTestOrchestrator(f)

	start := time.Now()
	res := o.Retrieve(context.Background(), "tok", "p")
	events.Close()

	if res.OK() || !errors.Is(res.Err, cause) {
		t.Fatalf("Err = %v, want wrapped cause", res.Err)
	}
	if res.Dishes != nil {
		t.Errorf("dishes on failure = %+v", res.Dishes)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("a failed recommendations call should cancel the pending info call")
	}
	if rb.Stats()["errors"] == 0 {
		t.Error("expected an error event")
	}
}

func TestFetchInfoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeFetcher{infoDelay: time.Second}
	o, _, _ := newTestOrchestrator(f)

	if _, err := o.FetchInfo(ctx, "tok", "p"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSupersededRequestIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeFetcher{dishesErr: context.Canceled, infoDelay: time.Second}
	o, rb, events := newTestOrchestrator(f)

	if _, err := o.FetchRecommendations(ctx, "tok", "p"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := o.FetchInfo(ctx, "tok", "p"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	events.Close()

	if n := rb.Stats()["errors"]; n != 0 {
		t.Errorf("errors = %d, want 0 for cancelled requests", n)
	}
	var cancels int
	for _, e := range rb.Snapshot() {
		if e.Kind == otel.KindRetrievalError || e.Kind == otel.KindInfoError {
			t.Errorf("unexpected %s event for a cancelled request", e.Kind)
		}
		if e.Kind == otel.KindRetrievalCancel {
			if e.Level != otel.LevelDebug {
				t.Errorf("cancel level = %s, want debug", e.Level)
			}
			cancels++
		}
	}
	if cancels != 2 {
		t.Errorf("cancel events = %d, want 2", cancels)
	}
}
