package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abelbrown/dishtip/internal/config"
	"github.com/abelbrown/dishtip/internal/mockbackend"
	"github.com/abelbrown/dishtip/internal/session"
	"github.com/abelbrown/dishtip/internal/ui"
)

func testDeps(t *testing.T, placesEndpoint, apiKey string) *Deps {
	t.Helper()
	srv := httptest.NewServer(mockbackend.New(mockbackend.DefaultFixtures(), nil))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Backend.BaseURL = srv.URL
	cfg.Places.APIKey = apiKey
	cfg.Places.Endpoint = placesEndpoint

	d, err := Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}

func TestBuildRejectsBadBackendURL(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.BaseURL = "localhost:8000"
	if _, err := Build(cfg, nil); err == nil {
		t.Error("Build should reject a base url without scheme")
	}
}

func TestUIConfigWithoutAPIKey(t *testing.T) {
	d := testDeps(t, "", "")
	cfg := d.UIConfig(nil)

	if cfg.SearchPlaces != nil {
		t.Error("autocomplete should be disabled without an API key")
	}
	if !cfg.RawPlaceIDs {
		t.Error("raw place ids should be accepted without an API key")
	}
	if cfg.Session == nil || cfg.Session.Phase() != session.Idle {
		t.Error("UIConfig should provide an idle session")
	}
}

func TestFetchCommands(t *testing.T) {
	d := testDeps(t, "", "")
	cfg := d.UIConfig(nil)
	ctx := context.Background()

	msg := cfg.FetchRecommendations(ctx, "tok-1", "abc123")()
	recs, ok := msg.(ui.RecommendationsLoaded)
	if !ok {
		t.Fatalf("got %T, want RecommendationsLoaded", msg)
	}
	if recs.Err != nil || recs.Token != "tok-1" {
		t.Fatalf("unexpected result: %+v", recs)
	}
	if len(recs.Dishes) != 1 || recs.Dishes[0].Name != "Ramen" {
		t.Errorf("dishes = %+v, want the Ramen fixture", recs.Dishes)
	}

	msg = cfg.FetchInfo(ctx, "tok-1", "abc123")()
	info, ok := msg.(ui.InfoLoaded)
	if !ok {
		t.Fatalf("got %T, want InfoLoaded", msg)
	}
	if info.Err != nil || info.Info == nil || info.Info.Name != "Ramen Bar" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestFetchRecommendationsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Backend.BaseURL = srv.URL
	d, err := Build(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	msg := d.UIConfig(nil).FetchRecommendations(context.Background(), "tok-2", "abc123")()
	recs := msg.(ui.RecommendationsLoaded)
	if recs.Err == nil {
		t.Fatal("expected an error")
	}
	if recs.Dishes != nil {
		t.Error("failed retrieval should carry no dishes")
	}
}

func TestSearchPlacesCommand(t *testing.T) {
	placesSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"suggestions":[{"placePrediction":{"placeId":"abc123","structuredFormat":{"mainText":{"text":"Ramen Bar"},"secondaryText":{"text":"Berlin"}}}}]}`))
	}))
	defer placesSrv.Close()

	d := testDeps(t, placesSrv.URL, "key")
	cfg := d.UIConfig(nil)
	if cfg.SearchPlaces == nil || cfg.RawPlaceIDs {
		t.Fatal("autocomplete should be enabled with an API key")
	}

	msg := cfg.SearchPlaces(context.Background(), "ramen", 7)()
	loaded, ok := msg.(ui.PlacesLoaded)
	if !ok {
		t.Fatalf("got %T, want PlacesLoaded", msg)
	}
	if loaded.Seq != 7 || loaded.Query != "ramen" || loaded.Err != nil {
		t.Fatalf("unexpected result: %+v", loaded)
	}
	if len(loaded.Places) != 1 || loaded.Places[0].ID != "abc123" {
		t.Errorf("places = %+v", loaded.Places)
	}
}
